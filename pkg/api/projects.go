package api

import (
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
)

func projectPath(id string, suffix string) string {
	return "/projects/" + url.PathEscape(id) + suffix
}

// GetProject fetches a project; viewing counts as a view for other profiles
func GetProject(id string) (*Project, error) {
	var resp struct {
		Project Project `json:"project"`
	}
	if err := call(resty.MethodGet, projectPath(id, ""), nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Project, nil
}

// DeleteProject removes one of the caller's projects
func DeleteProject(id string) error {
	return call(resty.MethodDelete, projectPath(id, ""), nil, nil, nil)
}

// SetLiked likes or unlikes a project. Repeats are no-ops on the server.
func SetLiked(id string, liked bool) (*EngagementResult, error) {
	return toggle(projectPath(id, "/like"), liked)
}

// SetSaved saves or unsaves a project
func SetSaved(id string, saved bool) (*EngagementResult, error) {
	return toggle(projectPath(id, "/save"), saved)
}

func toggle(path string, on bool) (*EngagementResult, error) {
	method := resty.MethodPost
	if !on {
		method = resty.MethodDelete
	}
	var resp EngagementResult
	if err := call(method, path, nil, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSavedProjects lists the caller's saved projects
func GetSavedProjects(limit, offset int) (*ProjectList, error) {
	var resp ProjectList
	if err := call(resty.MethodGet, "/me/saved", nil, &resp, pageQuery(limit, offset)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetComments lists a project's comments, oldest first
func GetComments(projectID string, limit, offset int) (*CommentList, error) {
	var resp CommentList
	if err := call(resty.MethodGet, projectPath(projectID, "/comments"), nil, &resp, pageQuery(limit, offset)); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateComment adds a comment to a project
func CreateComment(projectID, content string) (*Comment, error) {
	var resp struct {
		Comment Comment `json:"comment"`
	}
	body := map[string]string{"content": content}
	if err := call(resty.MethodPost, projectPath(projectID, "/comments"), body, &resp, nil); err != nil {
		return nil, err
	}
	return &resp.Comment, nil
}

// DeleteComment removes a comment written by the caller or on their project
func DeleteComment(id string) error {
	return call(resty.MethodDelete, "/comments/"+url.PathEscape(id), nil, nil, nil)
}

func pageQuery(limit, offset int) map[string]string {
	q := map[string]string{}
	if limit > 0 {
		q["limit"] = strconv.Itoa(limit)
	}
	if offset > 0 {
		q["offset"] = strconv.Itoa(offset)
	}
	return q
}
