// Package backend wraps outbound calls to the commerce API. It is pure I/O:
// room creation, message persistence and action recording. The current base
// URL and credential are read from the settings store on every call, so a
// rotation through the config panel applies to the next request.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/storelink/relay/internal/domain"
	"github.com/storelink/relay/internal/infrastructure/configs"
	"github.com/storelink/relay/internal/infrastructure/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// MessagesPathLegacy selects the older POST {base}/room/messages/{id} shape
// still deployed on some backends.
const (
	MessagesPathRooms  = "rooms"
	MessagesPathLegacy = "legacy"
)

type Client struct {
	http     *http.Client
	settings *configs.SettingsStore
	logger   logging.Logger
}

func NewClient(settings *configs.SettingsStore, timeout time.Duration, logger logging.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		settings: settings,
		logger:   logger,
	}
}

type CreateRoomRequest struct {
	RoomKey  string `json:"roomKey"`
	UserName string `json:"userName"`
	Email    string `json:"email,omitempty"`
	Status   string `json:"status"`
}

// CreateRoom registers a new conversation with the backend. Unlike the
// persistence calls, its error propagates: the relay reports creation
// failures back to the requesting client.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (domain.RoomDescriptor, error) {
	settings := c.settings.Current()

	var desc domain.RoomDescriptor
	if err := c.post(ctx, settings, settings.BaseURL+"/rooms", req, &desc); err != nil {
		return domain.RoomDescriptor{}, fmt.Errorf("create room: %w", err)
	}

	if desc.RoomKey == "" {
		desc.RoomKey = req.RoomKey
	}

	return desc, nil
}

// AppendMessage stores a message against a room. Called fire-and-forget; the
// returned error only ever reaches the logging sink.
func (c *Client) AppendMessage(ctx context.Context, roomID domain.RoomID, msg domain.Message) error {
	settings := c.settings.Current()

	url := fmt.Sprintf("%s/rooms/%s/messages", settings.BaseURL, roomID)
	if settings.MessagesPath == MessagesPathLegacy {
		url = fmt.Sprintf("%s/room/messages/%s", settings.BaseURL, roomID)
	}

	if err := c.post(ctx, settings, url, msg, nil); err != nil {
		return fmt.Errorf("append message to room %s: %w", roomID, err)
	}

	return nil
}

// RecordAction stores a commerce lifecycle event. Fire-and-forget, same
// discipline as AppendMessage.
func (c *Client) RecordAction(ctx context.Context, payload map[string]any) error {
	settings := c.settings.Current()

	if err := c.post(ctx, settings, settings.BaseURL+"/actions", payload, nil); err != nil {
		return fmt.Errorf("record action: %w", err)
	}

	return nil
}

func (c *Client) post(ctx context.Context, settings configs.BackendSettings, url string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if settings.Token != "" {
		req.Header.Set("Authorization", "Bearer "+settings.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
