// Package service implements the nexus commands on top of the API client and
// prints their results.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/client"
	clierrors "github.com/creativehub/nexus/pkg/errors"
)

// requireLogin fails before any request when there is no stored session
func requireLogin() error {
	if _, err := client.Ready(); err != nil {
		return err
	}
	if !client.HasAuthToken() {
		return clierrors.AuthError("You are not logged in")
	}
	return nil
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func handle(p *api.ProfileSummary) string {
	if p == nil {
		return "-"
	}
	return "@" + p.Username
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatRate(rate float64) string {
	if rate <= 0 {
		return "-"
	}
	return fmt.Sprintf("$%.2f/h", rate)
}

// pageFooter describes the position of a page in a longer list
func pageFooter(meta api.PageMeta, shown int) string {
	if shown == 0 {
		return ""
	}
	footer := fmt.Sprintf("Showing %d-%d of %d", meta.Offset+1, meta.Offset+shown, meta.Total)
	if meta.HasMore {
		footer += fmt.Sprintf(" (next: --offset %d)", meta.Offset+shown)
	}
	return footer
}
