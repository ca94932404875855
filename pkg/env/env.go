package env

import (
	"os"
	"strings"
)

// Prefix namespaces the service's variables.
const Prefix = "KABIPOS_"

// Get returns KABIPOS_<key>, then <key>, then fallback. Blank values count
// as unset.
func Get(key, fallback string) string {
	key = strings.TrimPrefix(key, Prefix)
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
