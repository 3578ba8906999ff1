package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxErrorBody = 64 << 10

// Config carries the OneSignal app credentials.
type Config struct {
	URL        string
	AppID      string
	RESTAPIKey string
	Timeout    time.Duration
}

// DispatchError reports a push that OneSignal rejected or never received.
type DispatchError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("onesignal dispatch: %v", e.Err)
	}
	return fmt.Sprintf("onesignal dispatch: status %d: %s", e.StatusCode, e.Body)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

type notificationRequest struct {
	AppID            string            `json:"app_id"`
	IncludePlayerIDs []string          `json:"include_player_ids"`
	Contents         map[string]string `json:"contents"`
	Headings         map[string]string `json:"headings"`
}

// Client sends push notifications through the OneSignal REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Send pushes one message to a single player id. Any non-2xx answer is a failure.
func (c *Client) Send(ctx context.Context, playerID, title, body string) error {
	payload, err := json.Marshal(notificationRequest{
		AppID:            c.cfg.AppID,
		IncludePlayerIDs: []string{playerID},
		Contents:         map[string]string{"en": body},
		Headings:         map[string]string{"en": title},
	})
	if err != nil {
		return &DispatchError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return &DispatchError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.cfg.RESTAPIKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &DispatchError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &DispatchError{StatusCode: res.StatusCode, Body: string(raw)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
