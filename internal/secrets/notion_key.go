package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups the toolkit's secrets in the OS keychain.
	KeyringService = "prospect"

	NotionKeyringAccount = "notion:api_key"
	NotionKeyEnv         = "NOTION_API_KEY"
)

var ErrNoNotionKey = errors.New("Notion API key not found (set it in keychain or NOTION_API_KEY)")

// lookupEnv is swapped in tests.
var lookupEnv = os.Getenv

// GetNotionKey prefers the keychain and falls back to NOTION_API_KEY.
func GetNotionKey() (string, error) {
	pw, err := keyring.Get(KeyringService, NotionKeyringAccount)
	if err == nil && strings.TrimSpace(pw) != "" {
		return strings.TrimSpace(pw), nil
	}
	if v := strings.TrimSpace(lookupEnv(NotionKeyEnv)); v != "" {
		return v, nil
	}
	return "", ErrNoNotionKey
}

func SetNotionKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, NotionKeyringAccount, strings.TrimSpace(key))
}

func DeleteNotionKey() error {
	err := keyring.Delete(KeyringService, NotionKeyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
