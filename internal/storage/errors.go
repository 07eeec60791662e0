package storage

import "errors"

// Storage errors.
var (
	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidInput is returned when a value is not valid JSON.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptRecord is returned when a stored value cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrUnsupportedVersion is returned when a stored envelope was written by a newer schema.
	ErrUnsupportedVersion = errors.New("unsupported schema version")
)

// ValidateKey rejects keys no backend can address.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
