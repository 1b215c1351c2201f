package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/medisync/clinic-client/types"
)

// MessageThreads returns the patient's conversations with providers.
func (c *Client) MessageThreads(ctx context.Context) ([]types.MessageThread, error) {
	var threads []types.MessageThread
	if err := c.Call(ctx, CallSpec{Method: http.MethodGet, Path: "/messages/threads"}, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// MessageThread returns one conversation with its messages.
func (c *Client) MessageThread(ctx context.Context, threadID int64) (*types.MessageThread, error) {
	var thread types.MessageThread
	err := c.Call(ctx, CallSpec{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/messages/threads/%d", threadID),
	}, &thread)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// SendMessage posts a message into an existing thread.
func (c *Client) SendMessage(ctx context.Context, threadID int64, content string) error {
	return c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/messages/threads/%d/send", threadID),
		Body:   map[string]any{"content": content, "attachments": []any{}},
	}, nil)
}

// CreateThread starts a new conversation with a provider.
func (c *Client) CreateThread(ctx context.Context, providerID int64, subject, content string) (*types.MessageThread, error) {
	var thread types.MessageThread
	err := c.Call(ctx, CallSpec{
		Method: http.MethodPost,
		Path:   "/messages/threads",
		Body: map[string]any{
			"provider_id":     providerID,
			"subject":         subject,
			"initial_message": content,
		},
	}, &thread)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// ArchiveThread removes a conversation from the patient's inbox.
func (c *Client) ArchiveThread(ctx context.Context, threadID int64) error {
	return c.Call(ctx, CallSpec{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/messages/threads/%d", threadID),
	}, nil)
}
