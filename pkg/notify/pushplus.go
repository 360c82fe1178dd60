package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const pushPlusEndpoint = "https://www.pushplus.plus/send"

// PushPlus posts markdown messages through the PushPlus relay.
type PushPlus struct {
	token    string
	topic    string
	endpoint string
	client   *http.Client
}

// NewPushPlus creates a PushPlus notifier. Topic is optional; without one
// the message goes to the token owner only.
func NewPushPlus(token, topic string) *PushPlus {
	return &PushPlus{
		token:    token,
		topic:    topic,
		endpoint: pushPlusEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *PushPlus) Name() string { return "pushplus" }

// Send posts one markdown message.
func (p *PushPlus) Send(ctx context.Context, title, markdown string) error {
	payload, err := json.Marshal(map[string]string{
		"token":    p.token,
		"title":    title,
		"content":  markdown,
		"template": "markdown",
		"topic":    p.topic,
	})
	if err != nil {
		return eris.Wrap(err, "pushplus: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "pushplus: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "pushplus: post")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("pushplus: unexpected status %d", resp.StatusCode)
	}

	var reply struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &reply); err != nil {
		return eris.Wrap(err, "pushplus: decode reply")
	}
	if reply.Code != 200 {
		return eris.Errorf("pushplus: code %d: %s", reply.Code, reply.Msg)
	}
	return nil
}
