package util

import (
	"errors"
	"strings"
)

// ValidateFilename checks if an uploaded filename is acceptable.
// Filename is required, cannot contain directory separators and must be <= 255 chars.
func ValidateFilename(filename string) error {
	if filename == "" {
		return errors.New("filename is required")
	}
	if strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return errors.New("filename cannot contain directory paths")
	}
	if len(filename) > 255 {
		return errors.New("filename too long (max 255 characters)")
	}
	return nil
}

// ValidateWebsite accepts empty values or http(s) URLs
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}
	if !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		return errors.New("website must start with http:// or https://")
	}
	return nil
}
