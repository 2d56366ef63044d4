package api

import (
	"strconv"

	"github.com/creativehub/nexus/pkg/logger"
	"github.com/go-resty/resty/v2"
)

// FeedParams are the feed filters. Zero values are left out of the query.
type FeedParams struct {
	Category string
	Search   string
	Range    string
	From     string
	To       string
	Media    string
	Sort     string
	BestOf   bool
	Limit    int
	Offset   int
}

// Query renders the parameters the way the backend reads them
func (p FeedParams) Query() map[string]string {
	q := map[string]string{}
	set := func(key, value string) {
		if value != "" {
			q[key] = value
		}
	}
	set("category", p.Category)
	set("q", p.Search)
	set("range", p.Range)
	set("from", p.From)
	set("to", p.To)
	set("media", p.Media)
	set("sort", p.Sort)
	if p.BestOf {
		q["best_of"] = "true"
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Offset > 0 {
		q["offset"] = strconv.Itoa(p.Offset)
	}
	return q
}

// GetFeed runs the combined filter, sort and search pipeline
func GetFeed(params FeedParams) (*ProjectList, error) {
	logger.Debug("Fetching feed", "params", params.Query())

	var resp ProjectList
	if err := call(resty.MethodGet, "/feed", nil, &resp, params.Query()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchProjects searches published projects
func SearchProjects(params FeedParams) (*ProjectList, error) {
	var resp ProjectList
	if err := call(resty.MethodGet, "/search/projects", nil, &resp, params.Query()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchProfiles searches profiles by username, display name and skills
func SearchProfiles(query string, limit, offset int) (*ProfileList, error) {
	var resp ProfileList
	params := FeedParams{Search: query, Limit: limit, Offset: offset}
	if err := call(resty.MethodGet, "/search/profiles", nil, &resp, params.Query()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSuggestions returns search-as-you-type suggestions
func GetSuggestions(query string, limit int) ([]Suggestion, error) {
	var resp struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	params := map[string]string{"q": query}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if err := call(resty.MethodGet, "/search/suggestions", nil, &resp, params); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// ListCategories returns categories in display order
func ListCategories() ([]Category, error) {
	var resp struct {
		Data []Category `json:"data"`
	}
	if err := call(resty.MethodGet, "/categories", nil, &resp, nil); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
