// Package env reads optional process settings that live outside config.Load.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v, ok := Lookup(key); ok {
		return v
	}
	return fallback
}

// Lookup returns the first non-blank value among keys, in order.
func Lookup(keys ...string) (string, bool) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, true
		}
	}
	return "", false
}
