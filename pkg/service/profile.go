package service

import (
	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/output"
)

// ProfileService provides profile operations
type ProfileService struct{}

// NewProfileService creates a new profile service
func NewProfileService() *ProfileService {
	return &ProfileService{}
}

// Show prints a public profile with stats
func (s *ProfileService) Show(username string) error {
	resp, err := api.GetProfile(username)
	if err != nil {
		return err
	}
	return printProfile(resp)
}

// ListProjects shows a profile's published projects
func (s *ProfileService) ListProjects(username string, limit, offset int) error {
	list, err := api.GetProfileProjects(username, limit, offset)
	if err != nil {
		return err
	}
	return printProjects(list)
}

// Update applies a partial update to the caller's profile
func (s *ProfileService) Update(update api.ProfileUpdate) error {
	if err := requireLogin(); err != nil {
		return err
	}
	p, err := api.UpdateMe(update)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(p)
	}
	output.PrintSuccess("Profile @%s updated", p.Username)
	return nil
}

func printProfile(resp *api.ProfileResponse) error {
	p := resp.Profile
	title := "@" + p.Username
	if p.DisplayName != "" {
		title = p.DisplayName + " (@" + p.Username + ")"
	}
	fields := []output.Field{
		{Label: "Bio", Value: orDash(p.Bio)},
		{Label: "Location", Value: orDash(p.Location)},
		{Label: "Website", Value: orDash(p.Website)},
		{Label: "Skills", Value: joinOrDash(p.Skills)},
		{Label: "Availability", Value: orDash(p.AvailabilityStatus)},
		{Label: "Rate", Value: formatRate(p.HourlyRate)},
		{Label: "Open to", Value: joinOrDash(p.OpenTo)},
		{Label: "Projects", Value: itoa64(resp.Stats.Projects)},
		{Label: "Likes received", Value: itoa64(resp.Stats.LikesReceived)},
		{Label: "Total views", Value: itoa64(resp.Stats.TotalViews)},
		{Label: "Joined", Value: formatTime(p.CreatedAt)},
	}
	if p.Email != "" {
		fields = append([]output.Field{{Label: "Email", Value: p.Email}}, fields...)
	}
	return output.PrintRecord(title, resp, fields)
}
