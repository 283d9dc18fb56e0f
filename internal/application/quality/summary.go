package quality

import (
	"fmt"
	"strings"
	"time"
)

// CheckResult 記錄單項檢查的結果。
type CheckResult struct {
	Label      string
	Violations int
	ReportPath string
	Err        error
}

func (r CheckResult) Failed() bool { return r.Err != nil }

// Summary 彙整一次執行的所有檢查結果。
type Summary struct {
	RunID       string
	Dataset     string
	DatasetRows map[string]int
	Results     []CheckResult
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Passed 當所有檢查都通過時回傳 true。
func (s Summary) Passed() bool {
	return len(s.Failures()) == 0
}

func (s Summary) Failures() []CheckResult {
	var out []CheckResult
	for _, r := range s.Results {
		if r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// Text 產生給人閱讀的摘要（通知訊息使用）。
func (s Summary) Text() string {
	var b strings.Builder
	status := "PASSED"
	if !s.Passed() {
		status = "FAILED"
	}
	fmt.Fprintf(&b, "[%s] data quality %s (%d/%d checks failed, run %s)",
		s.Dataset, status, len(s.Failures()), len(s.Results), s.RunID)
	for _, r := range s.Results {
		switch {
		case !r.Failed():
			fmt.Fprintf(&b, "\n- %s: ok", r.Label)
		case r.Violations > 0:
			fmt.Fprintf(&b, "\n- %s: %d rows -> %s", r.Label, r.Violations, r.ReportPath)
		default:
			fmt.Fprintf(&b, "\n- %s: %v", r.Label, firstLine(r.Err.Error()))
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
