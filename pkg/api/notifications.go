package api

import (
	"net/url"

	"github.com/go-resty/resty/v2"
)

// GetNotifications lists notifications newest first
func GetNotifications(unreadOnly bool, limit, offset int) (*NotificationList, error) {
	query := pageQuery(limit, offset)
	if unreadOnly {
		query["unread"] = "true"
	}
	var resp NotificationList
	if err := call(resty.MethodGet, "/notifications", nil, &resp, query); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetUnreadCount returns the number of unread notifications
func GetUnreadCount() (int64, error) {
	var resp struct {
		UnreadCount int64 `json:"unread_count"`
	}
	if err := call(resty.MethodGet, "/notifications/unread-count", nil, &resp, nil); err != nil {
		return 0, err
	}
	return resp.UnreadCount, nil
}

// MarkRead marks the given notifications read, or all of them when ids is empty
func MarkRead(ids []string) (*MarkReadResult, error) {
	body := map[string]interface{}{"ids": ids}
	if len(ids) == 0 {
		body = map[string]interface{}{"all": true}
	}
	var resp MarkReadResult
	if err := call(resty.MethodPost, "/notifications/read", body, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteNotification removes one notification
func DeleteNotification(id string) error {
	return call(resty.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil, nil)
}
