package credentials

import (
	"errors"
	"os"
	"time"

	"github.com/creativehub/nexus/pkg/config"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Credentials is the stored session of the signed-in profile
type Credentials struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ProfileID string    `json:"profile_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
}

// Load loads credentials from disk. It returns nil, nil when nobody is logged in.
func Load() (*Credentials, error) {
	data, err := os.ReadFile(config.GetCredentialsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Save writes credentials readable by the owner only
func Save(creds *Credentials) error {
	path := config.GetCredentialsPath()
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, 0600)
}

// Delete removes stored credentials; a missing file is not an error
func Delete() error {
	err := os.Remove(config.GetCredentialsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// IsExpired checks if the session token is expired
func (c *Credentials) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials can be used for a request
func (c *Credentials) IsValid() bool {
	return c != nil && c.Token != "" && !c.IsExpired()
}
