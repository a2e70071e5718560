// Package backend provides the durable stores a relief.Layer can sit on.
// Each one maps a collection key to a single JSON document.
package backend

import (
	"fmt"
	"regexp"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// ValidateKey rejects keys that cannot be used as file names, object names
// or table rows in every backend.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid key %q: want lowercase letters, digits and underscores", key)
	}
	return nil
}
