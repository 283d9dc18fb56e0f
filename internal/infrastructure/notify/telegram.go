package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bar-quality/internal/application/quality"
)

// TelegramClient 提供簡單的 sendMessage API 封裝。
type TelegramClient struct {
	token      string
	chatID     int64
	prefix     string
	baseURL    string
	httpClient *http.Client
}

func NewTelegramClient(token string, chatID int64, prefix string) *TelegramClient {
	return &TelegramClient{
		token:   token,
		chatID:  chatID,
		prefix:  prefix,
		baseURL: "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// maxMessageRunes 是 Telegram sendMessage 單則訊息的字數上限。
const maxMessageRunes = 4096

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// apiResponse 是 Bot API 的共用回應格式；HTTP 200 時 ok 仍可能為 false。
type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage 將文字訊息推送到指定 chat，超過上限的部分會被截斷。
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	if c == nil {
		return fmt.Errorf("telegram client is nil")
	}
	if c.token == "" || c.chatID == 0 {
		return fmt.Errorf("telegram token or chat_id missing")
	}

	if c.prefix != "" {
		text = "[" + c.prefix + "] " + text
	}
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  truncateRunes(text, maxMessageRunes),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	url := c.baseURL + "/bot" + c.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var api apiResponse
	decoded := json.Unmarshal(raw, &api) == nil
	switch {
	case resp.StatusCode >= 300:
		return fmt.Errorf("telegram send failed status=%d body=%s", resp.StatusCode, string(raw))
	case decoded && !api.OK && api.Description != "":
		return fmt.Errorf("telegram send failed code=%d: %s", api.ErrorCode, api.Description)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Publish 將檢查摘要推送到 Telegram。
func (c *TelegramClient) Publish(ctx context.Context, summary quality.Summary) error {
	return c.SendMessage(ctx, summary.Text())
}
