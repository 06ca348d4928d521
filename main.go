// polyglot — translate text, JSON, PO, and document files with DeepL.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/polyglot-translator/polyglot/config"
	"github.com/polyglot-translator/polyglot/deepl"
	"github.com/polyglot-translator/polyglot/i18n"
	"github.com/polyglot-translator/polyglot/manager"
	"github.com/polyglot-translator/polyglot/settings"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errColor = color.New(color.FgRed)

func logError(format string, args ...any) {
	errColor.Fprintf(os.Stderr, "[ERROR] ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var authKeyFlag string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "polyglot",
		Short: "Translate files with the DeepL API",
		Long: `polyglot — translate files with the DeepL API.

Translates plain text, JSON translation files, gettext PO catalogs, and
office documents (PDF, DOCX, PPTX, XLSX). The input format is selected by
the source file extension; output is written next to the source or into
--output_directory, named after the target language.

Commands:
  translate                  Translate a file
  print_supported_languages  List target languages the API supports
  print_usage_info           Show character quota consumption
  set_key                    Store the DeepL authentication key

The authentication key is resolved from --auth_key, the DEEPL_AUTH_KEY
environment variable, the system keyring, and finally the auth file, in
that order. Keys ending in ":fx" use the API Free endpoint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&authKeyFlag, "auth_key", "", "DeepL authentication key (overrides stored credentials)")

	root.AddCommand(
		newTranslateCmd(),
		newLanguagesCmd(),
		newUsageCmd(),
		newSetKeyCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// resolveAuthKey walks the credential sources in priority order.
func resolveAuthKey() (string, error) {
	if authKeyFlag != "" {
		return authKeyFlag, nil
	}
	if key := os.Getenv(settings.EnvVar); key != "" {
		return key, nil
	}
	if key := settings.AuthKey(); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no DeepL auth key found: pass --auth_key, set %s, or run 'polyglot set_key'", settings.EnvVar)
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("polyglot version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		sourceFile string
		targetLang string
		sourceLang string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a file",
		Long: `Translate a file with the DeepL API.

The handler is chosen by the source file extension:
  .json                  JSON translation file (string values)
  .po                    gettext catalog (also compiles a .mo)
  .pdf .docx .pptx .xlsx whole-document translation
  anything else          plain text

The output file is named after the target language (e.g. it.json) and
written to --output_directory, or next to the current directory when the
directory is missing or not given.

Defaults for --target_lang, --source_lang, and --output_directory can be
set in a .polyglot.yaml file in the working directory.

Examples:
  polyglot translate -p messages.json -t IT
  polyglot translate -p en.po -t de -o build/locales
  polyglot translate -p report.pdf -t ja -s en`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(sourceFile, targetLang, sourceLang, outputDir)
		},
	}

	cmd.Flags().StringVarP(&sourceFile, "source_file", "p", "", "Path of the file to translate (required)")
	cmd.Flags().StringVarP(&targetLang, "target_lang", "t", "", "Target language code, e.g. IT (required)")
	cmd.Flags().StringVarP(&sourceLang, "source_lang", "s", "", "Source language code (default: auto-detect)")
	cmd.Flags().StringVarP(&outputDir, "output_directory", "o", "", "Directory for the translated file")

	return cmd
}

func runTranslate(sourceFile, targetLang, sourceLang, outputDir string) error {
	// Flags win over .polyglot.yaml defaults.
	fileCfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if targetLang == "" {
		targetLang = fileCfg.TargetLang
	}
	if sourceLang == "" {
		sourceLang = fileCfg.SourceLang
	}
	if outputDir == "" {
		outputDir = fileCfg.OutputDirectory
	}

	if sourceFile == "" {
		return fmt.Errorf("--source_file is required")
	}
	if targetLang == "" {
		return fmt.Errorf("--target_lang is required (flag or %s)", config.FileName)
	}
	if _, err := os.Stat(sourceFile); err != nil {
		return fmt.Errorf("source file: %w", err)
	}

	key, err := resolveAuthKey()
	if err != nil {
		return err
	}
	client := deepl.New(key)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := manager.Config{
		SourceFile:      sourceFile,
		TargetLang:      targetLang,
		SourceLang:      sourceLang,
		OutputDirectory: outputDir,
	}

	if isDocumentFile(sourceFile) {
		m := &manager.Document{Config: cfg}
		return m.Run(ctx, client)
	}

	tr := manager.TranslatorFunc(func(ctx context.Context, text string) (string, error) {
		return client.Translate(ctx, text, targetLang, sourceLang)
	})
	return managerForSource(cfg).Run(ctx, tr)
}

// textManager is the common shape of the catalog-style managers.
type textManager interface {
	Run(ctx context.Context, tr manager.Translator) error
}

func managerForSource(cfg manager.Config) textManager {
	switch strings.ToLower(filepath.Ext(cfg.SourceFile)) {
	case ".json":
		return &manager.JSON{Config: cfg}
	case ".po":
		return &manager.PO{Config: cfg}
	default:
		return &manager.Text{Config: cfg}
	}
}

func isDocumentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".docx", ".pptx", ".xlsx":
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// print_supported_languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print_supported_languages",
		Short: "List target languages the API supports",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveAuthKey()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			langs, err := deepl.New(key).TargetLanguages(ctx)
			if err != nil {
				return err
			}
			for _, l := range langs {
				fmt.Printf("%-7s %s\n", l.Language, l.Name)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// print_usage_info
// ---------------------------------------------------------------------------

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print_usage_info",
		Short: "Show character quota consumption",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := resolveAuthKey()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			usage, err := deepl.New(key).GetUsage(ctx)
			if err != nil {
				return err
			}

			percent := 0.0
			if usage.CharacterLimit > 0 {
				percent = float64(usage.CharacterCount) / float64(usage.CharacterLimit) * 100
			}
			fmt.Printf(i18n.T("Characters used: %d of %d (%.1f%%).")+"\n",
				usage.CharacterCount, usage.CharacterLimit, percent)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// set_key
// ---------------------------------------------------------------------------

func newSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set_key",
		Short: "Store the DeepL authentication key",
		Long: `Store the DeepL authentication key for later use.

The key goes to the system keyring when one is available, otherwise to an
auth file under the user data directory with owner-only permissions.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := promptAuthKey()
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("no key entered")
			}

			location, err := settings.SetAuthKey(key)
			if err != nil {
				return err
			}
			fmt.Printf(i18n.T("Auth key saved to %s.")+"\n", location)
			return nil
		},
	}
}

// promptAuthKey reads the key without echo on a terminal, falling back to a
// plain line read when stdin is a pipe.
func promptAuthKey() (string, error) {
	fmt.Fprint(os.Stderr, "DeepL auth key: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return "", fmt.Errorf("no input received")
	}
	return strings.TrimSpace(scanner.Text()), nil
}
