// Package config handles configuration loading for indexadvisor.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/indexadvisor/internal/advisor"
	"github.com/seenimoa/indexadvisor/internal/analysis/currency"
	"github.com/seenimoa/indexadvisor/internal/analysis/monetary"
	"github.com/seenimoa/indexadvisor/internal/analysis/sentiment"
	"github.com/seenimoa/indexadvisor/internal/analysis/technical"
	"github.com/seenimoa/indexadvisor/internal/compare"
	"github.com/seenimoa/indexadvisor/internal/decision"
	"github.com/seenimoa/indexadvisor/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. INDEXADVISOR_API_PORT.
const EnvPrefix = "INDEXADVISOR"

// Config represents the complete application configuration.
type Config struct {
	Analysis AnalysisConfig                 `mapstructure:"analysis" yaml:"analysis"`
	Indices  map[string]models.IndexProfile `mapstructure:"indices"  yaml:"indices"`
	Regions  map[string]models.Region       `mapstructure:"regions"  yaml:"regions"`
	Investor InvestorConfig                 `mapstructure:"investor" yaml:"investor"`
	Data     DataConfig                     `mapstructure:"data"     yaml:"data"`
	API      APIConfig                      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig                  `mapstructure:"logging"  yaml:"logging"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

// AnalysisConfig holds the parameters of every extractor, the decision
// engine and the ranker.
type AnalysisConfig struct {
	Technical technical.Config `mapstructure:"technical" yaml:"technical"`
	Sentiment sentiment.Config `mapstructure:"sentiment" yaml:"sentiment"`
	Monetary  monetary.Config  `mapstructure:"monetary"  yaml:"monetary"`
	Currency  currency.Config  `mapstructure:"currency"  yaml:"currency"`
	Decision  decision.Config  `mapstructure:"decision"  yaml:"decision"`
	Compare   compare.Config   `mapstructure:"compare"   yaml:"compare"`
}

// InvestorConfig describes the investor.
type InvestorConfig struct {
	BaseCurrency string `mapstructure:"base_currency" yaml:"base_currency"`
	DefaultRisk  string `mapstructure:"default_risk"  yaml:"default_risk"` // conservative, moderate, aggressive
}

// DataConfig holds data collection and storage settings.
type DataConfig struct {
	DBPath            string   `mapstructure:"db_path"             yaml:"db_path"`
	HistoryYears      int      `mapstructure:"history_years"       yaml:"history_years"`
	MonetaryYears     int      `mapstructure:"monetary_years"      yaml:"monetary_years"`
	NewsLookbackDays  int      `mapstructure:"news_lookback_days"  yaml:"news_lookback_days"`
	NewsCategories    []string `mapstructure:"news_categories"     yaml:"news_categories"`
	FredAPIKey        string   `mapstructure:"fred_api_key"        yaml:"fred_api_key"`
	CacheTTL          int      `mapstructure:"cache_ttl"           yaml:"cache_ttl"` // seconds
	RequestsPerSecond float64  `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	TimeoutSec        int      `mapstructure:"timeout_sec"         yaml:"timeout_sec"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"` // "debug", "info", "warn", "error"
	Pretty bool   `mapstructure:"pretty" yaml:"pretty"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.indexadvisor/config.yaml (home directory)
//  3. /etc/indexadvisor/config.yaml (system)
//
// A .env file in the working directory is loaded first. Environment
// variables override config file values.
// Format: INDEXADVISOR_<SECTION>_<KEY>, e.g., INDEXADVISOR_API_PORT
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".indexadvisor"))
	v.AddConfigPath("/etc/indexadvisor")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the configuration with every default applied and no
// file or environment input.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err) // defaults always decode
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.normalize()
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func defaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		Technical: technical.DefaultConfig(),
		Sentiment: sentiment.DefaultConfig(),
		Monetary:  monetary.DefaultConfig(),
		Currency:  currency.DefaultConfig(),
		Decision:  decision.DefaultConfig(),
		Compare:   compare.DefaultConfig(),
	}
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Indices
	v.SetDefault("indices", map[string]any{
		"sp500": map[string]any{
			"ticker":          "^GSPC",
			"name":            "S&P 500",
			"currency":        "USD",
			"region":          "US",
			"fx_pair":         "EURUSD=X",
			"news_categories": []string{models.CategorySP500, models.CategoryMarketGeneral, models.CategoryFedPolicy},
		},
		"cw8": map[string]any{
			"ticker":          "CW8.PA",
			"name":            "MSCI World (CW8)",
			"currency":        "EUR",
			"region":          "EUROZONE",
			"news_categories": []string{models.CategoryCW8, models.CategoryMarketGeneral, models.CategoryECBPolicy},
		},
	})

	// Money-supply regions (FRED series)
	v.SetDefault("regions", map[string]any{
		"us":       map[string]any{"name": "United States", "series_id": "M2SL"},
		"eurozone": map[string]any{"name": "Euro Area", "series_id": "MABMM301EZM189S"},
	})

	// Investor
	v.SetDefault("investor.base_currency", "EUR")
	v.SetDefault("investor.default_risk", "moderate")

	// Data
	v.SetDefault("data.db_path", "data/indexadvisor.db")
	v.SetDefault("data.history_years", 2)
	v.SetDefault("data.monetary_years", 3)
	v.SetDefault("data.news_lookback_days", 7)
	v.SetDefault("data.news_categories", []string{
		models.CategorySP500, models.CategoryCW8, models.CategoryMarketGeneral,
		models.CategoryRecession, models.CategoryAIBubble, models.CategoryFedPolicy,
		models.CategoryECBPolicy, models.CategoryDollarEUR, models.CategoryM2Liquidity,
	})
	v.SetDefault("data.cache_ttl", 900) // 15 minutes
	v.SetDefault("data.requests_per_second", 2.0)
	v.SetDefault("data.timeout_sec", 30)

	// API
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", true)

	// Analysis
	setAnalysisDefaults(v)
}

// setAnalysisDefaults registers every analysis parameter as its own key.
// AutomaticEnv only binds keys viper knows, so this is what lets
// INDEXADVISOR_ANALYSIS_SENTIMENT_DECAY and friends take effect.
func setAnalysisDefaults(v *viper.Viper) {
	raw, err := yaml.Marshal(defaultAnalysis())
	if err != nil {
		panic(err) // plain structs always marshal
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		panic(err)
	}
	setLeaves(v, "analysis", tree)
}

func setLeaves(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := prefix + "." + k
		if sub, ok := val.(map[string]any); ok {
			setLeaves(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// normalize upper-cases index and region ids (viper lower-cases map keys)
// and fills the display names used by the ranker.
func (c *Config) normalize() {
	indices := make(map[string]models.IndexProfile, len(c.Indices))
	for key, p := range c.Indices {
		if p.ID == "" {
			p.ID = key
		}
		p.ID = strings.ToUpper(p.ID)
		p.Region = strings.ToUpper(p.Region)
		p.Currency = strings.ToUpper(p.Currency)
		indices[p.ID] = p
	}
	c.Indices = indices

	regions := make(map[string]models.Region, len(c.Regions))
	for key, r := range c.Regions {
		if r.ID == "" {
			r.ID = key
		}
		r.ID = strings.ToUpper(r.ID)
		regions[r.ID] = r
	}
	c.Regions = regions

	c.Investor.BaseCurrency = strings.ToUpper(c.Investor.BaseCurrency)

	names := make(map[string]string, len(c.Indices))
	for id, p := range c.Indices {
		if p.Name != "" {
			names[id] = p.Name
		}
	}
	c.Analysis.Compare.Names = names
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		cfg.Data.FredAPIKey = key
	}
	if key := os.Getenv(EnvPrefix + "_DATA_FRED_API_KEY"); key != "" {
		cfg.Data.FredAPIKey = key
	}
}

// loadDotEnv loads ./.env into the process environment. A missing file is
// not an error; existing variables are never overwritten.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Validate checks cross-references between sections.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Indices) == 0 {
		errs = append(errs, errors.New("no indices configured"))
	}
	if c.Investor.BaseCurrency == "" {
		errs = append(errs, errors.New("investor.base_currency is empty"))
	}
	if _, err := models.ParseRiskTolerance(c.Investor.DefaultRisk); err != nil {
		errs = append(errs, fmt.Errorf("investor.default_risk: %w", err))
	}
	for _, id := range c.IndexIDs() {
		p := c.Indices[id]
		if p.Ticker == "" {
			errs = append(errs, fmt.Errorf("index %s: ticker is empty", id))
		}
		if p.Currency == "" {
			errs = append(errs, fmt.Errorf("index %s: currency is empty", id))
		}
		if r, ok := c.Regions[p.Region]; !ok {
			errs = append(errs, fmt.Errorf("index %s: region %q is not configured", id, p.Region))
		} else if r.SeriesID == "" {
			errs = append(errs, fmt.Errorf("region %s: series_id is empty", p.Region))
		}
		if p.HasCurrencyExposure(c.Investor.BaseCurrency) && p.FXPair == "" {
			errs = append(errs, fmt.Errorf("index %s: fx_pair required for %s against %s", id, p.Currency, c.Investor.BaseCurrency))
		}
	}
	for _, risk := range []models.RiskTolerance{models.RiskConservative, models.RiskModerate, models.RiskAggressive} {
		t, ok := c.Analysis.Decision.Profiles[risk]
		if !ok {
			errs = append(errs, fmt.Errorf("analysis.decision.profiles: %s missing", risk))
			continue
		}
		if !t.Ordered() {
			errs = append(errs, fmt.Errorf("analysis.decision.profiles.%s: want strong_buy >= buy >= hold, got %d/%d/%d", risk, t.StrongBuy, t.Buy, t.Hold))
		}
	}
	if c.Data.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("data.requests_per_second must be positive"))
	}
	errs = append(errs, c.validateWindows()...)
	if d := c.Analysis.Sentiment.Decay; !(d > 0 && d <= 1) {
		errs = append(errs, fmt.Errorf("analysis.sentiment.decay must be in (0, 1], got %v", d))
	}
	if w := c.Analysis.Sentiment.UndatedWeight; w < 0 {
		errs = append(errs, fmt.Errorf("analysis.sentiment.undated_weight must not be negative, got %v", w))
	}
	t := c.Analysis.Technical
	if t.MAShort >= t.MALong {
		errs = append(errs, fmt.Errorf("analysis.technical: ma_short (%d) must be below ma_long (%d)", t.MAShort, t.MALong))
	}
	if t.MACDFast >= t.MACDSlow {
		errs = append(errs, fmt.Errorf("analysis.technical: macd_fast (%d) must be below macd_slow (%d)", t.MACDFast, t.MACDSlow))
	}
	if t.RSIOversold >= t.RSIOverbought {
		errs = append(errs, fmt.Errorf("analysis.technical: rsi_oversold (%v) must be below rsi_overbought (%v)", t.RSIOversold, t.RSIOverbought))
	}
	if t.MajorDip > t.SignificantDip || t.SignificantDip > 0 {
		errs = append(errs, fmt.Errorf("analysis.technical: want major_dip <= significant_dip <= 0, got %v/%v", t.MajorDip, t.SignificantDip))
	}
	return errors.Join(errs...)
}

// validateWindows checks that every lookback and window is positive.
func (c *Config) validateWindows() []error {
	t := c.Analysis.Technical
	windows := []struct {
		key string
		val int
	}{
		{"analysis.technical.rsi_period", t.RSIPeriod},
		{"analysis.technical.ma_short", t.MAShort},
		{"analysis.technical.ma_long", t.MALong},
		{"analysis.technical.slope_lookback", t.SlopeLookback},
		{"analysis.technical.macd_fast", t.MACDFast},
		{"analysis.technical.macd_slow", t.MACDSlow},
		{"analysis.technical.macd_signal", t.MACDSignal},
		{"analysis.technical.stoch_k", t.StochK},
		{"analysis.technical.stoch_d", t.StochD},
		{"analysis.technical.bollinger_period", t.BollingerPeriod},
		{"analysis.technical.atr_period", t.ATRPeriod},
		{"analysis.technical.volatility_window", t.VolatilityWindow},
		{"analysis.technical.dip_window", t.DipWindow},
		{"analysis.technical.support_window", t.SupportWindow},
		{"analysis.monetary.yoy_lookback", c.Analysis.Monetary.YoYLookback},
		{"analysis.currency.window", c.Analysis.Currency.Window},
		{"data.history_years", c.Data.HistoryYears},
		{"data.monetary_years", c.Data.MonetaryYears},
		{"data.news_lookback_days", c.Data.NewsLookbackDays},
	}
	var errs []error
	for _, w := range windows {
		if w.val <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", w.key, w.val))
		}
	}
	return errs
}

// IndexIDs returns the configured index ids in sorted order.
func (c *Config) IndexIDs() []string {
	ids := make([]string, 0, len(c.Indices))
	for id := range c.Indices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DefaultRisk returns the parsed default risk tolerance.
func (c *Config) DefaultRisk() models.RiskTolerance {
	r, err := models.ParseRiskTolerance(c.Investor.DefaultRisk)
	if err != nil {
		return models.RiskModerate
	}
	return r
}

// AdvisorConfig assembles the advisor's setup-time configuration.
func (c *Config) AdvisorConfig() advisor.Config {
	day := 24 * time.Hour
	return advisor.Config{
		Indices:         c.Indices,
		Regions:         c.Regions,
		BaseCurrency:    c.Investor.BaseCurrency,
		PriceHistory:    time.Duration(c.Data.HistoryYears) * 365 * day,
		MonetaryHistory: time.Duration(c.Data.MonetaryYears) * 365 * day,
		NewsLookback:    time.Duration(c.Data.NewsLookbackDays) * day,
		NewsCategories:  c.Data.NewsCategories,
		Technical:       c.Analysis.Technical,
		Sentiment:       c.Analysis.Sentiment,
		Monetary:        c.Analysis.Monetary,
		Currency:        c.Analysis.Currency,
		Decision:        c.Analysis.Decision,
		Compare:         c.Analysis.Compare,
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
