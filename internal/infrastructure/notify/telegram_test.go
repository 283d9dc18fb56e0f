package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bar-quality/internal/application/quality"
)

func TestTelegramClient_SendMessage(t *testing.T) {
	t.Run("nil_client", func(t *testing.T) {
		var c *TelegramClient
		err := c.SendMessage(context.Background(), "msg")
		if err == nil || err.Error() != "telegram client is nil" {
			t.Errorf("expected nil client error, got %v", err)
		}
	})

	t.Run("missing_config", func(t *testing.T) {
		c := NewTelegramClient("", 0, "")
		err := c.SendMessage(context.Background(), "msg")
		if err == nil || err.Error() != "telegram token or chat_id missing" {
			t.Error("expected missing config error")
		}
	})

	t.Run("success", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer ts.Close()

		c := NewTelegramClient("tok", 123, "PROD")
		c.baseURL = ts.URL
		err := c.SendMessage(context.Background(), "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("server_error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"bad"}`))
		}))
		defer ts.Close()

		c := NewTelegramClient("tok", 123, "")
		c.baseURL = ts.URL
		err := c.SendMessage(context.Background(), "hello")
		if err == nil {
			t.Error("expected error for 400 status")
		}
	})
}

func TestTelegramClient_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer ts.Close()

	c := NewTelegramClient("tok", 123, "")
	c.baseURL = ts.URL
	err := c.SendMessage(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "bot was blocked") {
		t.Errorf("expected api error, got %v", err)
	}
}

func TestTelegramClient_TruncatesLongMessage(t *testing.T) {
	var got sendMessageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewTelegramClient("tok", 123, "")
	c.baseURL = ts.URL
	if err := c.SendMessage(context.Background(), strings.Repeat("違", maxMessageRunes+10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len([]rune(got.Text)); n != maxMessageRunes {
		t.Errorf("expected %d runes, got %d", maxMessageRunes, n)
	}
	if !strings.HasSuffix(got.Text, "…") {
		t.Error("expected truncation marker")
	}
	if !got.DisableWebPagePreview {
		t.Error("expected web page preview disabled")
	}
}

func TestTelegramClient_Publish(t *testing.T) {
	var got struct {
		ChatID int64  `json:"chat_id"`
		Text   string `json:"text"`
	}
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewTelegramClient("tok", 123, "CN")
	c.baseURL = ts.URL

	summary := quality.Summary{
		RunID:   "run-1",
		Dataset: "cn_stock_index_bar1d",
		Results: []quality.CheckResult{{Label: "test_alldata"}},
	}
	if err := c.Publish(context.Background(), summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/bottok/sendMessage" {
		t.Errorf("unexpected path %s", path)
	}
	if got.ChatID != 123 {
		t.Errorf("expected chat id 123, got %d", got.ChatID)
	}
	if !strings.HasPrefix(got.Text, "[CN] [cn_stock_index_bar1d] data quality PASSED") {
		t.Errorf("unexpected text %q", got.Text)
	}
}
