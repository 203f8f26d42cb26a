package services

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const MsgNoResponse = "No response received from server"

// APIError 后端调用失败，Status 为 0 表示没有收到响应
type APIError struct {
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.cause }

// Message 取给用户看的错误信息
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return errors.Cause(err).Error()
}

// StatusOf 后端返回的状态码，没有则为 0
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

const maxHTMLMessage = 200

// responseMessage body.message 优先，其次是 html 错误页的标题，最后用 fallback
func responseMessage(raw []byte, contentType, fallback string) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &body); err == nil && body.Message != "" {
			return body.Message
		}
		return fallback
	}
	if strings.Contains(contentType, "text/html") || bytes.HasPrefix(trimmed, []byte("<")) {
		if msg := htmlMessage(trimmed); msg != "" {
			return msg
		}
	}
	return fallback
}

func htmlMessage(raw []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	for _, sel := range []string{"h1", "body"} {
		text := strings.Join(strings.Fields(doc.Find(sel).First().Text()), " ")
		if text != "" {
			return truncate(text, maxHTMLMessage)
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
