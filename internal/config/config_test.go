package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/indexadvisor/pkg/models"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FRED_API_KEY", "")
	t.Setenv(EnvPrefix+"_DATA_FRED_API_KEY", "")
}

// ── Default ──

func TestDefaultValues(t *testing.T) {
	clearKeyEnv(t)
	cfg := Default()

	if got := cfg.IndexIDs(); strings.Join(got, ",") != "CW8,SP500" {
		t.Errorf("IndexIDs: got %v, want [CW8 SP500]", got)
	}
	sp := cfg.Indices["SP500"]
	if sp.Ticker != "^GSPC" || sp.Currency != "USD" || sp.Region != "US" || sp.FXPair != "EURUSD=X" {
		t.Errorf("SP500 profile: %+v", sp)
	}
	if sp.ID != "SP500" {
		t.Errorf("SP500 id: got %q", sp.ID)
	}
	cw := cfg.Indices["CW8"]
	if cw.Currency != "EUR" || cw.Region != "EUROZONE" || cw.FXPair != "" {
		t.Errorf("CW8 profile: %+v", cw)
	}
	if cfg.Regions["US"].SeriesID != "M2SL" {
		t.Errorf("US series: got %q", cfg.Regions["US"].SeriesID)
	}
	if cfg.Regions["EUROZONE"].SeriesID != "MABMM301EZM189S" {
		t.Errorf("EUROZONE series: got %q", cfg.Regions["EUROZONE"].SeriesID)
	}

	if cfg.Investor.BaseCurrency != "EUR" {
		t.Errorf("BaseCurrency: got %q, want EUR", cfg.Investor.BaseCurrency)
	}
	if cfg.DefaultRisk() != models.RiskModerate {
		t.Errorf("DefaultRisk: got %q", cfg.DefaultRisk())
	}
	if cfg.Data.HistoryYears != 2 || cfg.Data.MonetaryYears != 3 || cfg.Data.NewsLookbackDays != 7 {
		t.Errorf("Data windows: %+v", cfg.Data)
	}
	if len(cfg.Data.NewsCategories) != 9 {
		t.Errorf("NewsCategories: got %d, want 9", len(cfg.Data.NewsCategories))
	}
	if cfg.Data.CacheTTL != 900 {
		t.Errorf("CacheTTL: got %d, want 900", cfg.Data.CacheTTL)
	}
	if cfg.API.Port != 8080 || cfg.API.Host != "127.0.0.1" {
		t.Errorf("API: %+v", cfg.API)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q", cfg.Logging.Level)
	}

	// Analysis defaults come from the packages themselves.
	mod := cfg.Analysis.Decision.Profiles[models.RiskModerate]
	if mod.StrongBuy != 50 || mod.Buy != 30 || mod.Hold != 10 {
		t.Errorf("moderate thresholds: %+v", mod)
	}
	if cfg.Analysis.Technical.RSIPeriod != 14 {
		t.Errorf("RSIPeriod: got %d, want 14", cfg.Analysis.Technical.RSIPeriod)
	}
	if cfg.Analysis.Currency.Window != 30 {
		t.Errorf("Currency.Window: got %d, want 30", cfg.Analysis.Currency.Window)
	}
	if cfg.Analysis.Compare.NearTieMargin != 10 {
		t.Errorf("NearTieMargin: got %d", cfg.Analysis.Compare.NearTieMargin)
	}
	if cfg.Analysis.Compare.Names["SP500"] != "S&P 500" {
		t.Errorf("Compare.Names: %v", cfg.Analysis.Compare.Names)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestAdvisorConfigDurations(t *testing.T) {
	clearKeyEnv(t)
	ac := Default().AdvisorConfig()

	day := 24 * time.Hour
	if ac.PriceHistory != 730*day {
		t.Errorf("PriceHistory: got %v", ac.PriceHistory)
	}
	if ac.MonetaryHistory != 3*365*day {
		t.Errorf("MonetaryHistory: got %v", ac.MonetaryHistory)
	}
	if ac.NewsLookback != 7*day {
		t.Errorf("NewsLookback: got %v", ac.NewsLookback)
	}
	if ac.BaseCurrency != "EUR" || len(ac.Indices) != 2 || len(ac.Regions) != 2 {
		t.Errorf("advisor config: %+v", ac)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearKeyEnv(t)
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
indices:
  ndx:
    ticker: "^NDX"
    name: "Nasdaq 100"
    currency: "usd"
    region: "us"
    fx_pair: "EURUSD=X"
    news_categories: ["market_general"]
investor:
  default_risk: "aggressive"
data:
  fred_api_key: "fred_from_file_123456"
  history_years: 5
analysis:
  decision:
    profiles:
      moderate:
        strong_buy: 70
        buy: 45
        hold: 15
  currency:
    window: 60
api:
  port: 9090
logging:
  level: "debug"
  pretty: false
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	ndx, ok := cfg.Indices["NDX"]
	if !ok {
		t.Fatalf("NDX not loaded: %v", cfg.IndexIDs())
	}
	if ndx.ID != "NDX" || ndx.Currency != "USD" || ndx.Region != "US" || ndx.Name != "Nasdaq 100" {
		t.Errorf("NDX profile not normalized: %+v", ndx)
	}
	if cfg.Analysis.Compare.Names["NDX"] != "Nasdaq 100" {
		t.Errorf("Compare.Names[NDX]: got %q", cfg.Analysis.Compare.Names["NDX"])
	}
	if cfg.DefaultRisk() != models.RiskAggressive {
		t.Errorf("DefaultRisk: got %q", cfg.DefaultRisk())
	}
	if cfg.Data.FredAPIKey != "fred_from_file_123456" {
		t.Errorf("FredAPIKey: got %q", cfg.Data.FredAPIKey)
	}
	if cfg.Data.HistoryYears != 5 {
		t.Errorf("HistoryYears: got %d, want 5", cfg.Data.HistoryYears)
	}

	mod := cfg.Analysis.Decision.Profiles[models.RiskModerate]
	if mod.StrongBuy != 70 || mod.Buy != 45 || mod.Hold != 15 {
		t.Errorf("moderate thresholds: %+v", mod)
	}
	// Profiles not in the file keep their defaults.
	cons := cfg.Analysis.Decision.Profiles[models.RiskConservative]
	if cons.StrongBuy != 60 {
		t.Errorf("conservative thresholds: %+v", cons)
	}
	if cfg.Analysis.Currency.Window != 60 {
		t.Errorf("Currency.Window: got %d, want 60", cfg.Analysis.Currency.Window)
	}
	if cfg.Analysis.Currency.TrendCutoff != 2 {
		t.Errorf("Currency.TrendCutoff should keep default, got %v", cfg.Analysis.Currency.TrendCutoff)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Pretty {
		t.Errorf("Logging: %+v", cfg.Logging)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrefix+"_API_PORT", "9191")
	t.Setenv(EnvPrefix+"_INVESTOR_DEFAULT_RISK", "conservative")

	cfg := Default()
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
	if cfg.DefaultRisk() != models.RiskConservative {
		t.Errorf("DefaultRisk: got %q", cfg.DefaultRisk())
	}
}

func TestEnvOverridesAnalysis(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrefix+"_ANALYSIS_SENTIMENT_DECAY", "0.8")
	t.Setenv(EnvPrefix+"_ANALYSIS_TECHNICAL_DIP_WINDOW", "45")
	t.Setenv(EnvPrefix+"_ANALYSIS_DECISION_PROFILES_MODERATE_BUY", "35")

	cfg := Default()
	if cfg.Analysis.Sentiment.Decay != 0.8 {
		t.Errorf("Sentiment.Decay: got %v, want 0.8", cfg.Analysis.Sentiment.Decay)
	}
	if cfg.Analysis.Technical.DipWindow != 45 {
		t.Errorf("Technical.DipWindow: got %d, want 45", cfg.Analysis.Technical.DipWindow)
	}
	if got := cfg.Analysis.Decision.Profiles[models.RiskModerate]; got.Buy != 35 || got.StrongBuy != 50 {
		t.Errorf("moderate thresholds: %+v", got)
	}
	// Untouched parameters keep their defaults.
	if cfg.Analysis.Sentiment.UndatedWeight != 0.5 || len(cfg.Analysis.Monetary.Bands) != 3 {
		t.Errorf("defaults lost: %+v %+v", cfg.Analysis.Sentiment, cfg.Analysis.Monetary)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config should validate: %v", err)
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("FRED_API_KEY", "plain-fred-key-123456")
	t.Setenv(EnvPrefix+"_DATA_FRED_API_KEY", "")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Data.FredAPIKey != "plain-fred-key-123456" {
		t.Errorf("FredAPIKey: got %q", cfg.Data.FredAPIKey)
	}

	// The prefixed variable wins over the plain one.
	t.Setenv(EnvPrefix+"_DATA_FRED_API_KEY", "prefixed-key-654321")
	overrideFromEnv(cfg)
	if cfg.Data.FredAPIKey != "prefixed-key-654321" {
		t.Errorf("FredAPIKey: got %q", cfg.Data.FredAPIKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	clearKeyEnv(t)

	cfg := &Config{Data: DataConfig{FredAPIKey: "from-config"}}
	overrideFromEnv(cfg)

	if cfg.Data.FredAPIKey != "from-config" {
		t.Errorf("FredAPIKey should stay as 'from-config' when env is unset, got %q", cfg.Data.FredAPIKey)
	}
}

// ── Validate ──

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"unknown region", func(c *Config) {
			p := c.Indices["SP500"]
			p.Region = "MARS"
			c.Indices["SP500"] = p
		}, `region "MARS" is not configured`},
		{"missing fx pair", func(c *Config) {
			p := c.Indices["SP500"]
			p.FXPair = ""
			c.Indices["SP500"] = p
		}, "fx_pair required"},
		{"empty ticker", func(c *Config) {
			p := c.Indices["CW8"]
			p.Ticker = ""
			c.Indices["CW8"] = p
		}, "index CW8: ticker is empty"},
		{"inverted thresholds", func(c *Config) {
			th := c.Analysis.Decision.Profiles[models.RiskAggressive]
			th.StrongBuy, th.Hold = th.Hold, th.StrongBuy
			c.Analysis.Decision.Profiles[models.RiskAggressive] = th
		}, "profiles.aggressive"},
		{"missing profile", func(c *Config) {
			delete(c.Analysis.Decision.Profiles, models.RiskConservative)
		}, "conservative missing"},
		{"bad risk", func(c *Config) {
			c.Investor.DefaultRisk = "yolo"
		}, "investor.default_risk"},
		{"no indices", func(c *Config) {
			c.Indices = nil
		}, "no indices configured"},
		{"zero rate", func(c *Config) {
			c.Data.RequestsPerSecond = 0
		}, "requests_per_second"},
		{"zero decay", func(c *Config) {
			c.Analysis.Sentiment.Decay = 0
		}, "analysis.sentiment.decay"},
		{"decay above one", func(c *Config) {
			c.Analysis.Sentiment.Decay = 1.5
		}, "analysis.sentiment.decay"},
		{"zero rsi period", func(c *Config) {
			c.Analysis.Technical.RSIPeriod = 0
		}, "analysis.technical.rsi_period must be positive"},
		{"negative dip window", func(c *Config) {
			c.Analysis.Technical.DipWindow = -30
		}, "analysis.technical.dip_window must be positive"},
		{"swapped averages", func(c *Config) {
			c.Analysis.Technical.MAShort, c.Analysis.Technical.MALong = 200, 50
		}, "ma_short (200) must be below ma_long (50)"},
		{"swapped dips", func(c *Config) {
			c.Analysis.Technical.MajorDip, c.Analysis.Technical.SignificantDip = -3, -5
		}, "major_dip <= significant_dip"},
		{"zero currency window", func(c *Config) {
			c.Analysis.Currency.Window = 0
		}, "analysis.currency.window must be positive"},
		{"zero history", func(c *Config) {
			c.Data.HistoryYears = 0
		}, "data.history_years must be positive"},
		{"zero news lookback", func(c *Config) {
			c.Data.NewsLookbackDays = 0
		}, "data.news_lookback_days must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearKeyEnv(t)
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	clearKeyEnv(t)
	cfg := Default()
	cfg.Investor.DefaultRisk = "yolo"
	cfg.Data.RequestsPerSecond = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "default_risk") || !strings.Contains(msg, "requests_per_second") {
		t.Errorf("expected both problems reported, got %q", msg)
	}
}

func TestDefaultRiskFallsBack(t *testing.T) {
	cfg := &Config{Investor: InvestorConfig{DefaultRisk: "nonsense"}}
	if cfg.DefaultRisk() != models.RiskModerate {
		t.Errorf("DefaultRisk: got %q, want moderate", cfg.DefaultRisk())
	}
}

// ── maskKey ──

func TestMaskKeyShort(t *testing.T) {
	// Keys with 8 or fewer characters should be fully masked
	for _, key := range []string{"", "a", "abc", "12345678"} {
		if got := maskKey(key); got != "***" {
			t.Errorf("maskKey(%q) = %q, want %q", key, got, "***")
		}
	}
}

func TestMaskKeyLong(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"123456789", "123...789"},
		{"abcdef0123456789abcdef0123456789", "abc...789"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.key); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearKeyEnv(t)
	statuses := CheckAPIKeys(&Config{})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 key status, got %d", len(statuses))
	}
	s := statuses[0]
	if s.IsSet || s.Source != KeySourceNone || s.Masked != "" {
		t.Errorf("empty key status: %+v", s)
	}
	if s.Hint == "" {
		t.Error("missing key should carry a hint")
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	clearKeyEnv(t)
	cfg := &Config{Data: DataConfig{FredAPIKey: "abcdefghijklmnop"}}
	s := CheckAPIKeys(cfg)[0]
	if !s.IsSet || s.Source != KeySourceConfig {
		t.Errorf("status: %+v", s)
	}
	if s.Masked != "abc...nop" {
		t.Errorf("Masked: got %q", s.Masked)
	}
	if s.Hint != "" {
		t.Errorf("set key should not carry a hint: %q", s.Hint)
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv(EnvPrefix+"_DATA_FRED_API_KEY", "env-key-123456789")

	s := checkKey("FRED API Key", "env-key-123456789", "FRED_API_KEY", EnvPrefix+"_DATA_FRED_API_KEY")
	if s.Source != KeySourceEnv {
		t.Errorf("Source: got %q, want env", s.Source)
	}
	if s.Name != "FRED API Key" {
		t.Errorf("Name: got %q", s.Name)
	}
}
