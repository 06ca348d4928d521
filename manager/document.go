package manager

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/polyglot-translator/polyglot/deepl"
	"github.com/polyglot-translator/polyglot/i18n"
)

// DocumentAPI is the asynchronous document translation workflow:
// submit, poll, download.
type DocumentAPI interface {
	UploadDocument(ctx context.Context, path, targetLang, sourceLang string) (*deepl.DocumentHandle, error)
	CheckDocumentStatus(ctx context.Context, handle *deepl.DocumentHandle) (*deepl.DocumentStatus, error)
	DownloadDocument(ctx context.Context, handle *deepl.DocumentHandle) ([]byte, error)
}

// Document delegates whole-file translation of binary formats (PDF, DOCX,
// ...) to the document API.
type Document struct {
	Config

	// PollInterval is the pause between status checks (default 2s).
	PollInterval time.Duration
	// PollTimeout bounds the whole wait (default 10m). Polling never runs
	// unbounded: a job that never completes fails with an error instead
	// of looping forever.
	PollTimeout time.Duration
}

// Run uploads the document, waits for the API to finish translating it,
// then downloads and persists the result, reporting billed characters.
func (m *Document) Run(ctx context.Context, api DocumentAPI) error {
	handle, err := api.UploadDocument(ctx, m.SourceFile, m.TargetLang, m.SourceLang)
	if err != nil {
		return fmt.Errorf("uploading document: %w", err)
	}

	status, err := m.waitForDocument(ctx, api, handle)
	if err != nil {
		return err
	}
	fmt.Printf(i18n.T("Translation completed. Billed characters: %d.")+"\n", status.BilledCharacters)

	data, err := api.DownloadDocument(ctx, handle)
	if err != nil {
		return fmt.Errorf("downloading document: %w", err)
	}

	target := m.TargetPath("")
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	color.Green(i18n.T("Generated %s."), target)
	return nil
}

// waitForDocument polls the document status until it is done, the deadline
// passes, or the API reports a distinct error state.
func (m *Document) waitForDocument(ctx context.Context, api DocumentAPI, handle *deepl.DocumentHandle) (*deepl.DocumentStatus, error) {
	interval := m.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	timeout := m.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	deadline := time.Now().Add(timeout)

	for {
		status, err := api.CheckDocumentStatus(ctx, handle)
		if err != nil {
			return nil, fmt.Errorf("checking document status: %w", err)
		}
		if status.Failed() {
			msg := status.ErrorMessage
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("document translation failed: %s", msg)
		}
		if status.Done() {
			return status, nil
		}

		// The estimate is sometimes absent even while translating.
		if status.SecondsRemaining >= 0 {
			fmt.Printf(i18n.T("Remaining %d seconds...")+"\n", status.SecondsRemaining)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("document not ready after %s, giving up", timeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}
