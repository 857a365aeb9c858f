package encryption

import (
	"fmt"

	"dayone-export/internal/config"
	"dayone-export/internal/journal"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// It returns a nil Encryptor when encryption is disabled, in which case
// archives are published in plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (journal.Encryptor, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "age":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
