package service

import (
	"fmt"
	"strconv"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/output"
	"github.com/fatih/color"
)

// AnalyticsService shows the caller's portfolio analytics
type AnalyticsService struct{}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{}
}

// Show prints totals, per-project numbers and daily activity for the last days
func (as *AnalyticsService) Show(days int) error {
	if err := requireLogin(); err != nil {
		return err
	}
	report, err := api.GetAnalytics(days)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(report)
	}

	title := fmt.Sprintf("Analytics %s to %s (%d days)", report.From, report.To, report.Days)
	if err := output.PrintRecord(title, report, []output.Field{
		{Label: "Projects", Value: report.Totals.Projects},
		{Label: "Views", Value: fmt.Sprintf("%d (%d in window)", report.Totals.Views, report.Window.Views)},
		{Label: "Likes", Value: fmt.Sprintf("%d (%d in window)", report.Totals.Likes, report.Window.Likes)},
		{Label: "Saves", Value: fmt.Sprintf("%d (%d in window)", report.Totals.Saves, report.Window.Saves)},
		{Label: "Comments", Value: report.Totals.Comments},
	}); err != nil {
		return err
	}

	section("Top projects")
	rows := make([][]string, 0, len(report.Projects))
	for _, p := range report.Projects {
		rows = append(rows, []string{
			output.Truncate(p.Title, 36),
			strconv.Itoa(p.Views),
			strconv.Itoa(p.Likes),
			strconv.Itoa(p.Saves),
			strconv.Itoa(p.Comments),
			fmt.Sprintf("%.1f", p.Engagement),
		})
	}
	if err := output.PrintTable(nil, []string{"PROJECT", "VIEWS", "LIKES", "SAVES", "COMMENTS", "ENGAGEMENT"}, rows); err != nil {
		return err
	}

	section("Daily activity")
	rows = rows[:0]
	for _, d := range report.Daily {
		rows = append(rows, []string{d.Date, strconv.Itoa(d.Views), strconv.Itoa(d.Likes), strconv.Itoa(d.Saves)})
	}
	if err := output.PrintTable(nil, []string{"DATE", "VIEWS", "LIKES", "SAVES"}, rows); err != nil {
		return err
	}

	if len(report.TopCategories) > 0 {
		section("Top categories")
		rows = rows[:0]
		for _, c := range report.TopCategories {
			rows = append(rows, []string{c.Name, strconv.Itoa(c.Projects), strconv.FormatInt(c.Views, 10)})
		}
		return output.PrintTable(nil, []string{"CATEGORY", "PROJECTS", "VIEWS"}, rows)
	}
	return nil
}

func section(title string) {
	fmt.Fprintln(output.Writer)
	color.New(color.Bold, color.FgCyan).Fprintln(output.Writer, title)
}
