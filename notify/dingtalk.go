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

	"leave/initialize/viper"

	"github.com/pkg/errors"
)

const dingTalkWebhook = "https://oapi.dingtalk.com/robot/send"

// DingTalk 钉钉群自定义机器人，配置了 secret 时加签
type DingTalk struct {
	token   string
	secret  string
	webhook string
	hc      *http.Client
	now     func() time.Time
}

type dingResponse struct {
	Errcode int    `json:"errcode"`
	Errmsg  string `json:"errmsg"`
}

func NewDingTalk(cfg viper.DingTalkConfig) *DingTalk {
	return &DingTalk{
		token:   cfg.RobotToken,
		secret:  cfg.Secret,
		webhook: dingTalkWebhook,
		hc:      &http.Client{Timeout: 5 * time.Second},
		now:     time.Now,
	}
}

func (d *DingTalk) Name() string { return "dingtalk" }

func hmacSha256(stringToSign string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// getURL 拼接 access_token，有 secret 时再拼上 timestamp 和 sign
func (d *DingTalk) getURL() string {
	u := d.webhook + "?access_token=" + url.QueryEscape(d.token)
	if d.secret == "" {
		return u
	}
	timestamp := d.now().UnixNano() / 1e6 //以毫秒为单位
	stringToSign := fmt.Sprintf("%d\n%s", timestamp, d.secret)
	sign := hmacSha256(stringToSign, d.secret)
	return fmt.Sprintf("%s&timestamp=%d&sign=%s", u, timestamp, url.QueryEscape(sign))
}

func (d *DingTalk) Send(ctx context.Context, text string) error {
	b, err := json.Marshal(map[string]interface{}{
		"msgtype": "text",
		"text": map[string]string{
			"content": text,
		},
	})
	if err != nil {
		return errors.WithStack(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.getURL(), bytes.NewReader(b))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.hc.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WithStack(err)
	}
	r := dingResponse{}
	if err = json.Unmarshal(data, &r); err != nil {
		return errors.Wrapf(err, "dingtalk status %d", resp.StatusCode)
	}
	if r.Errcode != 0 {
		return errors.New(r.Errmsg)
	}
	return nil
}
