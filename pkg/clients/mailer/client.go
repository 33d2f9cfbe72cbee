// Package mailer delivers notification events over an HTTP mail API. All
// notifier credentials come in through the config struct; nothing here reads
// ambient global state.
package mailer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/harshg28/stockroom/internal/config"
	"github.com/harshg28/stockroom/internal/domain/models"
)

// Client is a resty-backed mail API client. Events always go to the
// stockroom head's address; the recipient role is carried in the message
// body for context.
type Client struct {
	httpClient  *resty.Client
	sender      string
	headAddress string
}

// NewClient builds a mail client using the provided configuration values.
func NewClient(cfg config.MailConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetBasicAuth("api", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{
		httpClient:  restyClient,
		sender:      cfg.Sender,
		headAddress: cfg.HeadAddress,
	}
}

// sendResponse mirrors the successful response from the mail API.
type sendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// apiError represents a mail API error payload.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Send posts the notification as one message. The caller treats failures as
// best-effort; this method just reports them.
func (c *Client) Send(ctx context.Context, n models.Notification) error {
	payload := map[string]any{
		"from":    c.sender,
		"to":      []string{c.headAddress},
		"subject": n.Subject,
		"text":    fmt.Sprintf("For %s:\n\n%s", n.RecipientRole, n.Body),
	}

	result := new(sendResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		code := resp.StatusCode()
		if apiErr.Code != 0 {
			code = apiErr.Code
		}
		return fmt.Errorf("mail api error: code=%d, message=%s", code, message)
	}

	return nil
}
