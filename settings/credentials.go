// Package settings stores the DeepL auth key between invocations.
//
// The OS keyring is preferred. On headless systems without a keyring
// service the key falls back to a 0600 auth.json in the XDG data
// directory:
//
//	$XDG_DATA_HOME/polyglot/auth.json  (default: ~/.local/share/polyglot/)
//
// Resolution order used by the CLI at startup:
//  1. --auth_key flag
//  2. DEEPL_AUTH_KEY environment variable
//  3. OS keyring
//  4. auth.json fallback file
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "polyglot"
	keyringAccount = "deepl-auth-key"

	dataDirName  = "polyglot"
	authFileName = "auth.json"
)

// EnvVar is the environment variable consulted before the stores.
const EnvVar = "DEEPL_AUTH_KEY"

type authFile struct {
	DeepLAuthKey string `json:"deepl_auth_key"`
}

// SetAuthKey persists the auth key, preferring the OS keyring and falling
// back to the auth file. It returns the name of the store used.
func SetAuthKey(key string) (string, error) {
	if err := keyring.Set(keyringService, keyringAccount, key); err == nil {
		return "keyring", nil
	}
	if err := saveToFile(key); err != nil {
		return "", err
	}
	path, _ := authFilePath()
	return path, nil
}

// AuthKey returns the stored auth key, or "" when none is stored.
func AuthKey() string {
	if key, err := keyring.Get(keyringService, keyringAccount); err == nil && key != "" {
		return key
	}
	key, _ := loadFromFile()
	return key
}

// DeleteAuthKey removes the key from both stores.
func DeleteAuthKey() error {
	// Keyring miss is fine; the file may still hold the key.
	_ = keyring.Delete(keyringService, keyringAccount)

	path, err := authFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// dataDir returns the XDG data directory for polyglot, respecting
// $XDG_DATA_HOME and falling back to ~/.local/share.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func authFilePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, authFileName), nil
}

func saveToFile(key string) error {
	path, err := authFilePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(authFile{DeepLAuthKey: key}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

func loadFromFile() (string, error) {
	path, err := authFilePath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var f authFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("parsing auth file: %w", err)
	}
	return f.DeepLAuthKey, nil
}
