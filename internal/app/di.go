package app

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"bar-quality/internal/application/quality"
	"bar-quality/internal/infrastructure/config"
	"bar-quality/internal/infrastructure/csvsource"
	"bar-quality/internal/infrastructure/metrics"
	"bar-quality/internal/infrastructure/notify"
	"bar-quality/internal/infrastructure/persistence/postgres"
	"bar-quality/internal/infrastructure/report"
)

// ProvideSource 依設定建立資料集來源；postgres 來源需要 db。
func ProvideSource(cfg config.Config, ds config.DatasetConfig, db *sql.DB) (quality.DatasetSource, error) {
	switch ds.Source {
	case config.SourceCSV, "":
		return csvsource.NewLoader(ds.Name, cfg.DatasetPath(ds)), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("dataset %s: postgres source requires db.dsn", ds.Name)
		}
		return postgres.NewTableSource(db, ds.Name, ds.Table), nil
	default:
		return nil, fmt.Errorf("dataset %s: unsupported source %q (use: csv, postgres)", ds.Name, ds.Source)
	}
}

// ProvidePublishers 建立啟用中的摘要發布者（Telegram、Prometheus textfile）。
func ProvidePublishers(cfg config.Config) []quality.Publisher {
	var pubs []quality.Publisher
	if tg := cfg.Notifier.Telegram; tg.Enabled {
		pubs = append(pubs, notify.NewTelegramClient(tg.Token, tg.ChatID, tg.Prefix))
	}
	if cfg.Metrics.Textfile != "" {
		pubs = append(pubs, metrics.NewTextfileSink(cfg.Metrics.Textfile))
	}
	return pubs
}

// ProvideRunner 組裝檢查流程。
func ProvideRunner(cfg config.Config, db *sql.DB, log zerolog.Logger) (*quality.Runner, error) {
	bars, err := ProvideSource(cfg, cfg.Datasets.Bars, db)
	if err != nil {
		return nil, err
	}
	info, err := ProvideSource(cfg, cfg.Datasets.Info, db)
	if err != nil {
		return nil, err
	}
	rules, err := cfg.DomainRules()
	if err != nil {
		return nil, err
	}
	coverage, err := cfg.DomainCoverage()
	if err != nil {
		return nil, err
	}
	return quality.NewRunner(quality.Deps{
		Bars:       bars,
		Info:       info,
		Rules:      rules,
		Coverage:   coverage,
		Writer:     report.NewCSVWriter(cfg.Report.Dir),
		Publishers: ProvidePublishers(cfg),
		Log:        log,
	}), nil
}
