package recordstore

import "strings"

// Characters reserved by the backends for path and metadata encoding,
// so they can never appear inside a key.
const reservedKeyCharacters = `/\*&`

// ValidateKey returns ErrorInvalidKeyFormat if key is empty or contains
// any reserved character. It never touches storage.
func ValidateKey(key string) error {
	if key == "" {
		return ErrorInvalidKeyFormat
	}
	if strings.ContainsAny(key, reservedKeyCharacters) {
		return ErrorInvalidKeyFormat
	}

	return nil
}
