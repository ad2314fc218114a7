// Package whatsapp sends text messages through a Fonnte-compatible gateway.
package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// ErrNoToken is returned when the client has no gateway token.
var ErrNoToken = errors.New("whatsapp: gateway token not configured")

// Client posts messages to the gateway's send endpoint.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewClient(endpoint, token string) *Client {
	return &Client{endpoint: endpoint, token: token, http: &http.Client{Timeout: 15 * time.Second}}
}

type sendResult struct {
	Status bool   `json:"status"`
	Reason string `json:"reason"`
}

// Send delivers text to phone.  The gateway answers 200 even for refused
// messages, so the JSON status is checked as well.
func (c *Client) Send(ctx context.Context, phone, text string) error {
	if c.token == "" {
		return ErrNoToken
	}
	form := url.Values{}
	form.Set("target", phone)
	form.Set("message", text)
	form.Set("countryCode", "62")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "whatsapp: build request")
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "whatsapp: send")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return errors.Wrap(err, "whatsapp: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("whatsapp: gateway returned %d", resp.StatusCode)
	}
	var res sendResult
	if err := json.Unmarshal(body, &res); err != nil {
		return errors.Wrap(err, "whatsapp: decode response")
	}
	if !res.Status {
		return errors.Errorf("whatsapp: gateway refused message: %s", res.Reason)
	}
	return nil
}

// Notify implements the service notifier.
func (c *Client) Notify(ctx context.Context, n model.Notification) error {
	return c.Send(ctx, n.Phone, n.Text)
}
