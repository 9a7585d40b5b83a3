package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"mm-shipping/logger"
)

// Notifier delivers user-facing push messages. The transport behind it is an
// external collaborator; callers must treat every send as best-effort.
type Notifier interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// Message is the payload posted to the push gateway.
type Message struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// HTTPNotifier posts messages to the gateway at NOTIFY_BASE_URL.
type HTTPNotifier struct {
	client *http.Client
}

func NewHTTPNotifier() *HTTPNotifier {
	return &HTTPNotifier{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *HTTPNotifier) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	base := strings.TrimRight(os.Getenv("NOTIFY_BASE_URL"), "/")
	if base == "" {
		return fmt.Errorf("NOTIFY_BASE_URL is not set")
	}
	url := base + "/push/send/"

	reqBody, err := json.Marshal(Message{Token: token, Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway error: status=%d body=%s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Dispatch fires a notification without blocking the caller. Failures are
// logged and swallowed; a slow or dead gateway must never fail a shipment
// operation.
func Dispatch(n Notifier, token, title, body string, data map[string]string) {
	if token == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.Send(ctx, token, title, body, data); err != nil {
			logger.Error(fmt.Sprintf("Failed to dispatch notification (%s)", title), err)
		}
	}()
}
