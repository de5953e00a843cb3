package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/arklim/riskdash-client/internal/core/domain"
	"github.com/arklim/riskdash-client/internal/core/port"
)

var _ port.NotificationAPI = (*Client)(nil)

// List fetches the full notification snapshot.
func (c *Client) List(ctx context.Context) (domain.NotificationList, error) {
	var list domain.NotificationList
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &list); err != nil {
		return domain.NotificationList{}, err
	}
	return list, nil
}

// MarkRead flags a single notification as read and returns the updated
// record.
func (c *Client) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	var updated domain.Notification
	path := "/notifications/" + url.PathEscape(id) + "/mark_read"
	if err := c.do(ctx, http.MethodPatch, path, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkAllRead flags every notification as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/notifications/mark_all_read", nil, nil)
}

// Delete removes a single notification.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil)
}

// DeleteAll removes every notification.
func (c *Client) DeleteAll(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/notifications/destroy_all", nil, nil)
}
