package main

import (
	"strings"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/service"
	"github.com/spf13/cobra"
)

// feedFlags are the filters shared by feed and search
type feedFlags struct {
	category string
	search   string
	dateFrom string
	dateTo   string
	rangeKey string
	media    string
	sort     string
	bestOf   bool
	limit    int
	offset   int
}

func (f *feedFlags) bind(cmd *cobra.Command, withSearch bool) {
	flags := cmd.Flags()
	flags.StringVarP(&f.category, "category", "c", "", "Category slug")
	if withSearch {
		flags.StringVarP(&f.search, "search", "s", "", "Text search over title, description and tags")
	}
	flags.StringVar(&f.rangeKey, "range", "", "Date range: today, week, month, year, all")
	flags.StringVar(&f.dateFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	flags.StringVar(&f.dateTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	flags.StringVarP(&f.media, "media", "m", "", "Media type: image, video, all")
	flags.StringVar(&f.sort, "sort", "", "Sort: newest, oldest, most_liked, most_viewed, most_commented, trending")
	flags.BoolVar(&f.bestOf, "best-of", false, "Only the best of the selected range")
	flags.IntVarP(&f.limit, "limit", "n", 20, "Results per page")
	flags.IntVar(&f.offset, "offset", 0, "Results to skip")
}

func (f *feedFlags) params() api.FeedParams {
	return api.FeedParams{
		Category: strings.ToLower(strings.TrimSpace(f.category)),
		Search:   strings.TrimSpace(f.search),
		Range:    f.rangeKey,
		From:     f.dateFrom,
		To:       f.dateTo,
		Media:    f.media,
		Sort:     f.sort,
		BestOf:   f.bestOf,
		Limit:    f.limit,
		Offset:   f.offset,
	}
}

func newFeedCmd() *cobra.Command {
	var flags feedFlags
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Browse the project feed",
		Long: `Browse published projects. Filters combine: a category, a text search,
a date range, a media type and a sort order. --best-of ranks the most
engaging projects in the range.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewFeedService().ViewFeed(flags.params())
		},
	}
	flags.bind(cmd, true)
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		flags    feedFlags
		profiles bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search projects or creators",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if profiles {
				return service.NewFeedService().SearchProfiles(query, flags.limit, flags.offset)
			}
			params := flags.params()
			params.Search = query
			return service.NewFeedService().SearchProjects(params)
		},
	}
	flags.bind(cmd, false)
	cmd.Flags().BoolVarP(&profiles, "profiles", "p", false, "Search creators instead of projects")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Suggest titles, tags, categories and creators",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewFeedService().Suggest(strings.Join(args, " "), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 8, "Maximum suggestions")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewFeedService().ListCategories()
		},
	}
}
