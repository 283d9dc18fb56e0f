package logging

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"bar-quality/internal/infrastructure/config"
)

// New 依設定建立 logger；format 為 json 時輸出 JSON，否則使用 console 格式。
func New(cfg config.LogConfig, out io.Writer) zerolog.Logger {
	var w io.Writer = out
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel 將 debug/info/warn/error 轉為 zerolog 等級，無法辨識時為 info。
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
