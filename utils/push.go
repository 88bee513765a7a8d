package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushClient posts notifications to the Expo push endpoint. Delivery is
// best-effort; callers log failures and move on.
type PushClient struct {
	endpoint string
	client   *http.Client
}

// NewPushClient builds a PushClient. An empty endpoint disables delivery.
func NewPushClient(endpoint string) *PushClient {
	if endpoint == "" {
		endpoint = "https://exp.host/--/api/v2/push/send"
	}
	return &PushClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// PushMessage is the Expo push payload
type PushMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Send delivers a single push message
func (p *PushClient) Send(msg PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %v", err)
	}

	resp, err := p.client.Post(p.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to deliver push: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
