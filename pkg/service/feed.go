package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/logger"
	"github.com/creativehub/nexus/pkg/output"
)

// FeedService provides feed, search and category operations
type FeedService struct{}

// NewFeedService creates a new feed service
func NewFeedService() *FeedService {
	return &FeedService{}
}

// ViewFeed shows one page of the filtered feed
func (fs *FeedService) ViewFeed(params api.FeedParams) error {
	logger.Debug("Viewing feed", "params", params.Query())

	feed, err := api.GetFeed(params)
	if err != nil {
		return err
	}
	if !output.IsJSON() {
		if summary := describeFilters(feed.Meta); summary != "" {
			output.PrintInfo(summary)
		}
	}
	return printProjects(feed)
}

// SearchProjects searches projects, honoring the same filters as the feed
func (fs *FeedService) SearchProjects(params api.FeedParams) error {
	results, err := api.SearchProjects(params)
	if err != nil {
		return err
	}
	if results.Meta.Fallback && !output.IsJSON() {
		output.PrintWarning("search index unavailable, showing basic matches")
	}
	return printProjects(results)
}

// SearchProfiles searches creators
func (fs *FeedService) SearchProfiles(query string, limit, offset int) error {
	results, err := api.SearchProfiles(query, limit, offset)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(results.Profiles))
	for _, p := range results.Profiles {
		rows = append(rows, []string{
			"@" + p.Username,
			orDash(p.DisplayName),
			output.Truncate(joinOrDash(p.Skills), 40),
			orDash(p.AvailabilityStatus),
			strconv.Itoa(p.ProjectCount),
		})
	}
	if err := output.PrintTable(results, []string{"USERNAME", "NAME", "SKILLS", "AVAILABILITY", "PROJECTS"}, rows); err != nil {
		return err
	}
	printFooter(results.Meta.PageMeta, len(rows))
	return nil
}

// Suggest shows search-as-you-type suggestions for a prefix
func (fs *FeedService) Suggest(query string, limit int) error {
	suggestions, err := api.GetSuggestions(query, limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(suggestions))
	for _, s := range suggestions {
		rows = append(rows, []string{s.Kind, s.Text})
	}
	return output.PrintTable(suggestions, []string{"KIND", "SUGGESTION"}, rows)
}

// ListCategories shows categories with their published project counts
func (fs *FeedService) ListCategories() error {
	categories, err := api.ListCategories()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Slug, c.Name, strconv.FormatInt(c.ProjectCount, 10)})
	}
	return output.PrintTable(categories, []string{"SLUG", "NAME", "PROJECTS"}, rows)
}

func printProjects(list *api.ProjectList) error {
	rows := make([][]string, 0, len(list.Projects))
	for _, p := range list.Projects {
		category := "-"
		if p.Category != nil {
			category = p.Category.Slug
		}
		rows = append(rows, []string{
			p.ID,
			output.Truncate(p.Title, 40),
			handle(p.Owner),
			category,
			p.MediaType,
			strconv.Itoa(p.LikeCount),
			strconv.Itoa(p.ViewCount),
			formatTime(p.CreatedAt),
		})
	}
	if err := output.PrintTable(list, []string{"ID", "TITLE", "OWNER", "CATEGORY", "MEDIA", "LIKES", "VIEWS", "CREATED"}, rows); err != nil {
		return err
	}
	printFooter(list.Meta.PageMeta, len(rows))
	return nil
}

func printFooter(meta api.PageMeta, shown int) {
	if output.IsJSON() {
		return
	}
	if footer := pageFooter(meta, shown); footer != "" {
		fmt.Fprintln(output.Writer, footer)
	}
}

// describeFilters renders the applied filters, e.g. "sort=best_of category=illustration"
func describeFilters(meta api.FeedMeta) string {
	parts := make([]string, 0, len(meta.Filters)+1)
	if meta.Sort != "" {
		parts = append(parts, "sort="+meta.Sort)
	}
	keys := make([]string, 0, len(meta.Filters))
	for k := range meta.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, meta.Filters[k]))
	}
	return strings.Join(parts, " ")
}
