package api

import (
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// GetProfile returns a public profile with stats
func GetProfile(username string) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := call(resty.MethodGet, "/profiles/"+url.PathEscape(username), nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfileProjects lists a profile's published projects
func GetProfileProjects(username string, limit, offset int) (*ProjectList, error) {
	var resp ProjectList
	path := "/profiles/" + url.PathEscape(username) + "/projects"
	if err := call(resty.MethodGet, path, nil, &resp, pageQuery(limit, offset)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateMe applies a partial profile update
func UpdateMe(update ProfileUpdate) (*Profile, error) {
	var resp struct {
		Profile Profile `json:"profile"`
	}
	if err := call(resty.MethodPatch, "/me", update, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Profile, nil
}

// GetProfileAvailability returns another profile's availability
func GetProfileAvailability(username string) (*Availability, error) {
	var resp struct {
		Availability Availability `json:"availability"`
	}
	path := "/profiles/" + url.PathEscape(username) + "/availability"
	if err := call(resty.MethodGet, path, nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Availability, nil
}

// GetMyAvailability returns the caller's availability
func GetMyAvailability() (*Availability, error) {
	var resp struct {
		Availability Availability `json:"availability"`
	}
	if err := call(resty.MethodGet, "/me/availability", nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Availability, nil
}

// UpdateMyAvailability replaces the caller's availability
func UpdateMyAvailability(settings Availability) (*Availability, error) {
	var resp struct {
		Availability Availability `json:"availability"`
	}
	if err := call(resty.MethodPut, "/me/availability", settings, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Availability, nil
}

// GetAnalytics returns the caller's analytics over a window of days
func GetAnalytics(days int) (*AnalyticsReport, error) {
	var resp struct {
		Analytics AnalyticsReport `json:"analytics"`
	}
	query := map[string]string{}
	if days > 0 {
		query["days"] = strconv.Itoa(days)
	}
	if err := call(resty.MethodGet, "/me/analytics", nil, &resp, query); err != nil {
		return nil, err
	}
	return &resp.Analytics, nil
}
