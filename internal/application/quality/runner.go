package quality

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bar-quality/internal/domain/dataquality"
)

// DatasetSource 抽象化資料集來源（CSV 檔、資料表等）。
type DatasetSource interface {
	Load(ctx context.Context) (*dataquality.Dataset, error)
}

// ReportWriter 將違規報告落地並回傳路徑。
type ReportWriter interface {
	Write(rep *dataquality.ViolationReport) (string, error)
}

// Publisher 在檢查結束後發布摘要（通知、監控指標等）。
type Publisher interface {
	Publish(ctx context.Context, summary Summary) error
}

// Fixture 保存一次執行期間唯讀共享的資料集。
type Fixture struct {
	Bars *dataquality.Dataset
	Info *dataquality.Dataset
}

// Deps 組裝 Runner 所需的相依。
type Deps struct {
	Bars       DatasetSource
	Info       DatasetSource
	Rules      dataquality.Rules
	Coverage   dataquality.Coverage
	Writer     ReportWriter
	Publishers []Publisher
	Log        zerolog.Logger
}

// Runner 負責載入資料集、執行檢查並輸出報告。
type Runner struct {
	bars       DatasetSource
	info       DatasetSource
	checks     []dataquality.Check
	coverage   dataquality.Coverage
	nullTokens []string
	writer     ReportWriter
	publishers []Publisher
	log        zerolog.Logger
	now        func() time.Time
}

func NewRunner(d Deps) *Runner {
	return &Runner{
		bars:       d.Bars,
		info:       d.Info,
		checks:     dataquality.DefaultChecks(d.Rules),
		coverage:   d.Coverage,
		nullTokens: d.Rules.NullTokens,
		writer:     d.Writer,
		publishers: d.Publishers,
		log:        d.Log,
		now:        time.Now,
	}
}

// Checks 回傳逐列檢查（不含資料涵蓋檢查）。
func (r *Runner) Checks() []dataquality.Check {
	return r.checks
}

// Labels 依執行順序回傳所有檢查名稱。
func (r *Runner) Labels() []string {
	labels := []string{dataquality.LabelCoverage}
	for _, c := range r.checks {
		labels = append(labels, c.Label())
	}
	return labels
}

// LoadFixture 載入日 K 與指數資料；任一資料集為空即回傳 ErrDataUnavailable。
// 等於 null token 的儲存格在載入後即轉為 null，報告中以空欄位輸出。
func (r *Runner) LoadFixture(ctx context.Context) (*Fixture, error) {
	bars, err := r.load(ctx, "bars", r.bars)
	if err != nil {
		return nil, err
	}
	info, err := r.load(ctx, "info", r.info)
	if err != nil {
		return nil, err
	}
	return &Fixture{Bars: bars, Info: info}, nil
}

func (r *Runner) load(ctx context.Context, kind string, src DatasetSource) (*dataquality.Dataset, error) {
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	if ds, err = ds.NormalizeNulls(r.nullTokens); err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	r.log.Info().Str("dataset", ds.Name()).Int("rows", ds.Len()).Msg("dataset loaded")
	return ds, nil
}

// VerifyCoverage 確認資料集在設定期間內有資料。
func (r *Runner) VerifyCoverage(ds *dataquality.Dataset) (CheckResult, error) {
	res := CheckResult{Label: dataquality.LabelCoverage}
	name := ""
	if ds != nil {
		name = ds.Name()
	}
	n, err := r.coverage.Verify(name, ds)
	if err != nil {
		res.Err = err
		return res, err
	}
	r.log.Info().Str("dataset", name).Int("rows", n).Msg("data available")
	return res, nil
}

// Report 寫出報告並在有違規資料時回傳 ValidationFailure。
func (r *Runner) Report(rep *dataquality.ViolationReport) (CheckResult, error) {
	res := CheckResult{Label: rep.Label, Violations: rep.Len()}
	path, err := r.writer.Write(rep)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", rep.Label, err)
		return res, res.Err
	}
	res.ReportPath = path

	if failure := rep.Failure(path); failure != nil {
		res.Err = failure
		r.log.Warn().Str("check", rep.Label).Int("rows", rep.Len()).Str("report", path).Msg("violations found")
		return res, failure
	}
	r.log.Debug().Str("check", rep.Label).Str("report", path).Msg("check passed")
	return res, nil
}

// RunCheck 對資料集執行單項檢查並輸出報告。
func (r *Runner) RunCheck(ds *dataquality.Dataset, c dataquality.Check) (CheckResult, error) {
	rep, err := dataquality.Evaluate(c, ds)
	if err != nil {
		res := CheckResult{Label: c.Label(), Err: err}
		return res, err
	}
	return r.Report(rep)
}

// Run 執行指定的檢查（未指定時全部執行）；任何檢查失敗時回傳合併後的錯誤。
func (r *Runner) Run(ctx context.Context, labels ...string) (Summary, error) {
	selected, err := r.selectLabels(labels)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID:       uuid.NewString(),
		DatasetRows: map[string]int{},
		StartedAt:   r.now(),
	}
	log := r.log.With().Str("run_id", summary.RunID).Logger()

	fx, err := r.LoadFixture(ctx)
	if err != nil {
		return summary, err
	}
	summary.Dataset = fx.Bars.Name()
	summary.DatasetRows[fx.Bars.Name()] = fx.Bars.Len()
	summary.DatasetRows[fx.Info.Name()] = fx.Info.Len()

	var errs []error
	if selected[dataquality.LabelCoverage] {
		res, err := r.VerifyCoverage(fx.Bars)
		summary.Results = append(summary.Results, res)
		errs = append(errs, err)
	}
	for _, c := range r.checks {
		if !selected[c.Label()] {
			continue
		}
		res, err := r.RunCheck(fx.Bars, c)
		summary.Results = append(summary.Results, res)
		errs = append(errs, err)
	}
	summary.FinishedAt = r.now()

	log.Info().
		Int("checks", len(summary.Results)).
		Int("failed", len(summary.Failures())).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("checks finished")

	for _, p := range r.publishers {
		if err := p.Publish(ctx, summary); err != nil {
			log.Error().Err(err).Msg("publish summary failed")
		}
	}
	return summary, errors.Join(errs...)
}

func (r *Runner) selectLabels(labels []string) (map[string]bool, error) {
	known := r.Labels()
	selected := make(map[string]bool, len(known))
	if len(labels) == 0 {
		for _, l := range known {
			selected[l] = true
		}
		return selected, nil
	}
	for _, l := range labels {
		found := false
		for _, k := range known {
			if k == l {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown check %q (available: %v)", l, known)
		}
		selected[l] = true
	}
	return selected, nil
}
