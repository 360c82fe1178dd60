package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// DingTalk posts markdown messages to a DingTalk group robot webhook with
// HMAC-SHA256 request signing.
type DingTalk struct {
	webhook string
	secret  string
	client  *http.Client
}

// NewDingTalk creates a DingTalk notifier. Secret may be empty when the
// robot uses keyword filtering instead of signing.
func NewDingTalk(webhook, secret string) *DingTalk {
	return &DingTalk{
		webhook: webhook,
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *DingTalk) Name() string { return "dingtalk" }

// Send posts one markdown message.
func (d *DingTalk) Send(ctx context.Context, title, markdown string) error {
	payload, err := json.Marshal(map[string]any{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"title": title,
			"text":  markdown,
		},
	})
	if err != nil {
		return eris.Wrap(err, "dingtalk: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.signedURL(), bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "dingtalk: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "dingtalk: post")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("dingtalk: unexpected status %d", resp.StatusCode)
	}

	var reply struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &reply); err != nil {
		return eris.Wrap(err, "dingtalk: decode reply")
	}
	if reply.ErrCode != 0 {
		return eris.Errorf("dingtalk: errcode %d: %s", reply.ErrCode, reply.ErrMsg)
	}
	return nil
}

// signedURL appends the timestamp and signature query parameters the robot
// expects: base64(hmac-sha256("<millis>\n<secret>", secret)).
func (d *DingTalk) signedURL() string {
	if d.secret == "" {
		return d.webhook
	}
	millis := time.Now().UnixMilli()
	toSign := fmt.Sprintf("%d\n%s", millis, d.secret)

	mac := hmac.New(sha256.New, []byte(d.secret))
	mac.Write([]byte(toSign))
	sign := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return fmt.Sprintf("%s&timestamp=%d&sign=%s", d.webhook, millis, sign)
}
