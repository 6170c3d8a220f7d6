// Package instance names the running worker process.
package instance

import (
	"os"
	"strings"
)

// EnvWorkerID overrides the derived identifier.
const EnvWorkerID = "BARGEN_WORKER_ID"

const fallbackID = "worker-0"

// GetID returns the configured worker id, the hostname, or a fixed default.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvWorkerID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
