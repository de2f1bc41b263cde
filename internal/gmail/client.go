package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	gmail_v1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/dennisonbertram/mcp-gmail/internal/logging"
)

// gmailUser addresses the authenticated user in every API call.
const gmailUser = "me"

// Client wraps the Gmail users service for the authenticated account.
type Client struct {
	svc *gmail_v1.UsersService
}

// NewClient creates a Gmail client from an OAuth-authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := gmail_v1.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users}, nil
}

// GetProfile fetches the authenticated user's mailbox profile. This is the
// cheapest authenticated Gmail call, so it doubles as the post-consent
// verification step.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	p, err := c.svc.GetProfile(gmailUser).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Gmail profile: %w", err)
	}
	// Log the account hashed, never the raw address.
	slog.Debug("fetched Gmail profile", logging.UserHash(p.EmailAddress))
	return &Profile{
		EmailAddress:  p.EmailAddress,
		MessagesTotal: p.MessagesTotal,
		ThreadsTotal:  p.ThreadsTotal,
	}, nil
}

// ListLabels lists all labels in the user's mailbox.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	res, err := c.svc.Labels.List(gmailUser).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	labels := make([]Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		labels = append(labels, Label{
			ID:       l.Id,
			Name:     l.Name,
			Type:     l.Type,
			Unread:   l.MessagesUnread,
			Messages: l.MessagesTotal,
		})
	}
	return labels, nil
}

// ListMessages lists messages matching a Gmail search query, fetching header
// summaries for up to maxResults messages.
func (c *Client) ListMessages(ctx context.Context, query string, maxResults int64) ([]MessageSummary, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	res, err := c.svc.Messages.List(gmailUser).Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	summaries := make([]MessageSummary, 0, len(res.Messages))
	for _, m := range res.Messages {
		summary, err := c.GetMessage(ctx, m.Id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// GetMessage fetches a single message's headers and snippet.
func (c *Client) GetMessage(ctx context.Context, id string) (*MessageSummary, error) {
	m, err := c.svc.Messages.Get(gmailUser, id).
		Format("metadata").
		MetadataHeaders("From", "To", "Subject", "Date").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return summarizeMessage(m), nil
}

func summarizeMessage(m *gmail_v1.Message) *MessageSummary {
	summary := &MessageSummary{
		ID:      m.Id,
		Snippet: m.Snippet,
	}
	if m.Payload == nil {
		return summary
	}
	for _, h := range m.Payload.Headers {
		switch h.Name {
		case "From":
			summary.From = h.Value
		case "To":
			summary.To = h.Value
		case "Subject":
			summary.Subject = h.Value
		case "Date":
			summary.Date = h.Value
		}
	}
	return summary
}
