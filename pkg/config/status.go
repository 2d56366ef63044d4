package config

import (
	"net/url"
	"strings"
)

// placeholderMarkers flag values copied from an example config and never filled in
var placeholderMarkers = []string{"your-", "example", "placeholder", "changeme", "<"}

// IsPlaceholder reports whether value is empty or still a template value
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}

// Status describes whether the client can reach a backend
type Status struct {
	Connected      bool   `json:"connected"`
	Reason         string `json:"reason,omitempty"`
	BackendURL     string `json:"backend_url"`
	PublishableKey string `json:"publishable_key"`
}

// String renders the status the way `config status` prints it
func (s Status) String() string {
	if s.Connected {
		return "connected"
	}
	return "disconnected (" + s.Reason + ")"
}

// CheckStatus inspects the backend URL and publishable key. Both are required;
// a missing or placeholder value puts the client in the disconnected state.
func CheckStatus() Status {
	backendURL := strings.TrimSpace(GetString(KeyBackendURL))
	key := strings.TrimSpace(GetString(KeyPublishableKey))

	status := Status{BackendURL: backendURL, PublishableKey: MaskKey(key)}
	switch {
	case backendURL == "":
		status.Reason = "missing backend URL"
	case IsPlaceholder(backendURL):
		status.Reason = "placeholder backend URL"
	case !validBackendURL(backendURL):
		status.Reason = "invalid backend URL"
	case key == "":
		status.Reason = "missing publishable key"
	case IsPlaceholder(key):
		status.Reason = "placeholder key"
	default:
		status.Connected = true
	}
	return status
}

func validBackendURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// MaskKey keeps the first and last four characters of a key
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
