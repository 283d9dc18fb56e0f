package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"bar-quality/internal/domain/dataquality"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Config 儲存資料品質檢查的執行設定。
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Datasets DatasetsConfig `yaml:"datasets"`
	Report   ReportConfig   `yaml:"report"`
	Rules    RulesConfig    `yaml:"rules"`
	Coverage CoverageConfig `yaml:"coverage"`
	DB       DBConfig       `yaml:"db"`
	Notifier NotifierConfig `yaml:"notifier"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

type DatasetsConfig struct {
	Bars DatasetConfig `yaml:"bars"`
	Info DatasetConfig `yaml:"info"`
}

// DatasetConfig 描述一個資料集的來源；csv 使用 Path，postgres 使用 Table。
type DatasetConfig struct {
	Name   string `yaml:"name" validate:"required"`
	Source string `yaml:"source" validate:"oneof=csv postgres"`
	Path   string `yaml:"path" validate:"required_if=Source csv"`
	Table  string `yaml:"table" validate:"required_if=Source postgres"`
}

type ReportConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

type RulesConfig struct {
	NullTokens        []string           `yaml:"null_tokens"`
	IllegalMarkers    []string           `yaml:"illegal_markers"`
	Columns           []ColumnRuleConfig `yaml:"columns" validate:"dive"`
	HighColumn        string             `yaml:"high_column" validate:"required"`
	LowColumn         string             `yaml:"low_column" validate:"required"`
	ChangeRatioColumn string             `yaml:"change_ratio_column" validate:"required"`
	ChangeRatioBound  string             `yaml:"change_ratio_bound" validate:"required,numeric"`
}

type ColumnRuleConfig struct {
	Name string `yaml:"name" validate:"required"`
	Type string `yaml:"type" validate:"oneof=string number integer date"`
}

type CoverageConfig struct {
	DateColumn string `yaml:"date_column"`
	From       string `yaml:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `yaml:"to" validate:"omitempty,datetime=2006-01-02"`
}

type DBConfig struct {
	Driver       string        `yaml:"driver" validate:"oneof=pgx postgres"`
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type NotifierConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token" validate:"required_if=Enabled true"`
	ChatID  int64  `yaml:"chat_id" validate:"required_if=Enabled true"`
	Prefix  string `yaml:"prefix"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// LoadFromFile 從 YAML 組態檔載入設定；檔案不存在時使用預設值。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查欄位組合是否合法，並確認 postgres 來源有 DSN。
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.UsesPostgres() && c.DB.DSN == "" {
		return fmt.Errorf("invalid config: db.dsn is required for postgres datasets")
	}
	return nil
}

func applyDefaults(cfg Config) Config {
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	cfg.Datasets.Bars = datasetDefaults(cfg.Datasets.Bars, "cn_stock_index_bar1d")
	cfg.Datasets.Info = datasetDefaults(cfg.Datasets.Info, "cn_stock_index_info")
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "."
	}
	if cfg.Rules.NullTokens == nil {
		cfg.Rules.NullTokens = dataquality.DefaultNullTokens()
	}
	if cfg.Rules.IllegalMarkers == nil {
		cfg.Rules.IllegalMarkers = []string{"/"}
	}
	if cfg.Rules.HighColumn == "" {
		cfg.Rules.HighColumn = "high"
	}
	if cfg.Rules.LowColumn == "" {
		cfg.Rules.LowColumn = "low"
	}
	if cfg.Rules.ChangeRatioColumn == "" {
		cfg.Rules.ChangeRatioColumn = "change_ratio"
	}
	if cfg.Rules.ChangeRatioBound == "" {
		cfg.Rules.ChangeRatioBound = "1"
	}
	if cfg.Coverage.From == "" {
		cfg.Coverage.From = "2023-08-03"
	}
	if cfg.Coverage.To == "" {
		cfg.Coverage.To = "2023-08-15"
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "pgx"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 2
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 1
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 5 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	return cfg
}

func datasetDefaults(ds DatasetConfig, name string) DatasetConfig {
	if ds.Name == "" {
		ds.Name = name
	}
	if ds.Source == "" {
		ds.Source = SourceCSV
	}
	if ds.Source == SourceCSV && ds.Path == "" {
		ds.Path = ds.Name + ".csv"
	}
	return ds
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("BARCHECK_DATA_DIR"); val != "" {
		cfg.DataDir = val
	}
	if val := os.Getenv("BARCHECK_REPORT_DIR"); val != "" {
		cfg.Report.Dir = val
	}
	if val := os.Getenv("BARCHECK_BARS_PATH"); val != "" {
		cfg.Datasets.Bars.Path = val
	}
	if val := os.Getenv("BARCHECK_INFO_PATH"); val != "" {
		cfg.Datasets.Info.Path = val
	}
	if val := os.Getenv("DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("DB_DRIVER"); val != "" {
		cfg.DB.Driver = val
	}
	if val := os.Getenv("TELEGRAM_TOKEN"); val != "" {
		cfg.Notifier.Telegram.Token = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID"); val != "" {
		if id, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Notifier.Telegram.ChatID = id
		}
	}
	if val := os.Getenv("TELEGRAM_ENABLED"); val != "" {
		cfg.Notifier.Telegram.Enabled = (val == "true")
	}
	if val := os.Getenv("METRICS_TEXTFILE"); val != "" {
		cfg.Metrics.Textfile = val
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		cfg.Log.Format = val
	}
	return cfg
}

// UsesPostgres 判斷是否有資料集來自資料庫。
func (c Config) UsesPostgres() bool {
	return c.Datasets.Bars.Source == SourcePostgres || c.Datasets.Info.Source == SourcePostgres
}

// DatasetPath 回傳 CSV 檔的實際路徑；相對路徑以 DataDir 為基準。
func (c Config) DatasetPath(ds DatasetConfig) string {
	if filepath.IsAbs(ds.Path) {
		return ds.Path
	}
	return filepath.Join(c.DataDir, ds.Path)
}

// DomainRules 將規則設定轉為檢查使用的 Rules。
func (c Config) DomainRules() (dataquality.Rules, error) {
	bound, err := decimal.NewFromString(c.Rules.ChangeRatioBound)
	if err != nil {
		return dataquality.Rules{}, fmt.Errorf("parse change_ratio_bound: %w", err)
	}
	rules := dataquality.Rules{
		NullTokens:        c.Rules.NullTokens,
		IllegalMarkers:    c.Rules.IllegalMarkers,
		HighColumn:        c.Rules.HighColumn,
		LowColumn:         c.Rules.LowColumn,
		ChangeRatioColumn: c.Rules.ChangeRatioColumn,
		ChangeRatioBound:  bound,
	}
	for _, col := range c.Rules.Columns {
		rules.Columns = append(rules.Columns, dataquality.ColumnRule{
			Name: col.Name,
			Type: dataquality.ColumnType(col.Type),
		})
	}
	return rules, nil
}

// DomainCoverage 將期間設定轉為 Coverage。
func (c Config) DomainCoverage() (dataquality.Coverage, error) {
	cov := dataquality.Coverage{DateColumn: c.Coverage.DateColumn}
	var err error
	if c.Coverage.From != "" {
		if cov.From, err = time.Parse("2006-01-02", c.Coverage.From); err != nil {
			return cov, fmt.Errorf("parse coverage.from: %w", err)
		}
	}
	if c.Coverage.To != "" {
		if cov.To, err = time.Parse("2006-01-02", c.Coverage.To); err != nil {
			return cov, fmt.Errorf("parse coverage.to: %w", err)
		}
	}
	return cov, nil
}
