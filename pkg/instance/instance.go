package instance

import (
	"os"
	"strings"

	"github.com/erancho/erancho-backend/pkg/env"
)

const fallbackID = "local"

// ID names the running process in logs and cron lock traces. ERANCHO_INSTANCE_ID
// wins over the container hostname.
func ID() string {
	if id := strings.TrimSpace(env.Get("ERANCHO_INSTANCE_ID", "")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && strings.TrimSpace(host) != "" {
		return host
	}
	return fallbackID
}
