package service

import (
	"fmt"
	"strings"

	"github.com/creativehub/nexus/pkg/api"
	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/output"
)

// HiringService drives the simulated hiring workflow
type HiringService struct{}

// NewHiringService creates a new hiring service
func NewHiringService() *HiringService {
	return &HiringService{}
}

// Request sends a hire request to a freelancer
func (hs *HiringService) Request(input api.HireRequestInput) error {
	if err := requireLogin(); err != nil {
		return err
	}
	input.FreelancerUsername = strings.TrimPrefix(strings.TrimSpace(input.FreelancerUsername), "@")
	if input.FreelancerUsername == "" {
		return clierrors.ValidationError("freelancer_username", "a freelancer is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return clierrors.ValidationError("title", "a title is required")
	}
	if input.Budget < 0 {
		return clierrors.ValidationError("budget", "must be zero or more")
	}

	hr, err := api.CreateHireRequest(input)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(hr)
	}
	output.PrintSuccess("Hire request %s sent to %s", hr.ID, handle(hr.Freelancer))
	return nil
}

// List shows hire requests for a role ("client", "freelancer" or both)
func (hs *HiringService) List(role, status string, limit, offset int) error {
	if err := requireLogin(); err != nil {
		return err
	}
	switch role {
	case "", "client", "freelancer":
	default:
		return clierrors.ValidationError("role", "must be client or freelancer")
	}

	list, err := api.ListHireRequests(role, status, limit, offset)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(list.HireRequests))
	for _, hr := range list.HireRequests {
		rows = append(rows, []string{
			hr.ID,
			output.Truncate(hr.Title, 32),
			handle(hr.Client),
			handle(hr.Freelancer),
			fmt.Sprintf("$%.2f", hr.Budget),
			hr.Status,
			formatTime(hr.CreatedAt),
		})
	}
	if err := output.PrintTable(list, []string{"ID", "TITLE", "CLIENT", "FREELANCER", "BUDGET", "STATUS", "SENT"}, rows); err != nil {
		return err
	}
	printFooter(list.Meta, len(rows))
	return nil
}

// Transition applies accept, decline, complete or cancel
func (hs *HiringService) Transition(id, action string) error {
	if err := requireLogin(); err != nil {
		return err
	}
	hr, err := api.TransitionHireRequest(id, action)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(hr)
	}
	output.PrintSuccess("Hire request %s is now %s", hr.ID, hr.Status)
	return nil
}
