package instance

import "os"

// GetID identifies the running process in logs. STOCKROOM_INSTANCE_ID wins,
// then the host name.
func GetID() string {
	if id := os.Getenv("STOCKROOM_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
