package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/medisync/clinic-client/types"
)

// Notifications returns the patient's in-app notifications.
func (c *Client) Notifications(ctx context.Context) ([]types.Notification, error) {
	// The notifications endpoint wraps its list in a data envelope.
	var envelope struct {
		Data []types.Notification `json:"data"`
	}
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/notifications"}, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, kind string, sourceID int64) error {
	return c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/notifications/%s/%d/read", url.PathEscape(kind), sourceID),
	}, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, kind string, sourceID int64) error {
	return c.Call(ctx, CallSpec{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/notifications/%s/%d", url.PathEscape(kind), sourceID),
	}, nil)
}

// SupportTickets returns the patient's help-desk tickets.
func (c *Client) SupportTickets(ctx context.Context) ([]types.SupportTicket, error) {
	var tickets []types.SupportTicket
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/support/tickets"}, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// CreateSupportTicket raises a new help-desk ticket.
func (c *Client) CreateSupportTicket(ctx context.Context, subject, message string, priority *string) (*types.SupportTicket, error) {
	var ticket types.SupportTicket
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   "/support/tickets",
		Body: map[string]any{
			"subject":  subject,
			"message":  message,
			"priority": priority,
		},
	}, &ticket)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// HelpArticles returns knowledge-base entries, optionally filtered by
// category.
func (c *Client) HelpArticles(ctx context.Context, category string) ([]types.HelpArticle, error) {
	path := "/support/articles"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var articles []types.HelpArticle
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: path}, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// HelpArticleCategories returns the available knowledge-base categories.
func (c *Client) HelpArticleCategories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/support/articles/categories"}, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// UserSettings returns the account's server-side preferences.
func (c *Client) UserSettings(ctx context.Context) (*types.UserSettings, error) {
	var settings types.UserSettings
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/settings/me"}, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateUserSettings applies new preferences.
func (c *Client) UpdateUserSettings(ctx context.Context, settings types.UserSettings) (*types.UserSettings, error) {
	var updated types.UserSettings
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPut,
		Path:   "/settings/me",
		Body:   settings,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ChangePassword replaces the account password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   "/settings/me/change-password",
		Body: map[string]string{
			"current_password": currentPassword,
			"new_password":     newPassword,
		},
	}, nil)
}
