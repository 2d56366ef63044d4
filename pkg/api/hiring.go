package api

import (
	"net/url"

	"github.com/go-resty/resty/v2"
)

// Hire request actions
const (
	HireActionAccept   = "accept"
	HireActionDecline  = "decline"
	HireActionComplete = "complete"
	HireActionCancel   = "cancel"
)

// CreateHireRequest sends a hire request to a freelancer
func CreateHireRequest(input HireRequestInput) (*HireRequest, error) {
	var resp struct {
		HireRequest HireRequest `json:"hire_request"`
	}
	if err := call(resty.MethodPost, "/hire-requests", input, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.HireRequest, nil
}

// ListHireRequests lists requests where the caller has role (client or
// freelancer; empty for both), optionally filtered by status
func ListHireRequests(role, status string, limit, offset int) (*HireRequestList, error) {
	query := pageQuery(limit, offset)
	if role != "" {
		query["role"] = role
	}
	if status != "" {
		query["status"] = status
	}
	var resp HireRequestList
	if err := call(resty.MethodGet, "/hire-requests", nil, &resp, query); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TransitionHireRequest applies accept, decline, complete or cancel
func TransitionHireRequest(id, action string) (*HireRequest, error) {
	var resp struct {
		HireRequest HireRequest `json:"hire_request"`
	}
	path := "/hire-requests/" + url.PathEscape(id) + "/" + action
	if err := call(resty.MethodPost, path, nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.HireRequest, nil
}
