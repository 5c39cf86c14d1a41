package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataForSEO  DataForSEOConfig
	PageSpeed   PageSpeedConfig
	Export      ExportConfig
	Scheduler   SchedulerConfig
	DatabaseURL string
	ListenAddr  string
	LogPath     string
	Policy      Policy
}

type DataForSEOConfig struct {
	Login         string
	Password      string
	TaskPostURL   string
	TasksReadyURL string
	PagesURL      string
	MaxCrawlPages int
}

// Configured reports whether crawl credentials are present. Audit runs
// require them; read-only endpoints do not.
func (c DataForSEOConfig) Configured() bool {
	return c.Login != "" && c.Password != ""
}

type PageSpeedConfig struct {
	APIKey      string
	Endpoint    string
	Concurrency int
}

func (c PageSpeedConfig) Configured() bool {
	return c.APIKey != ""
}

type ExportConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func (c ExportConfig) Configured() bool {
	return c.Bucket != "" && c.AccessKeyID != ""
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

// Policy holds detection thresholds, severity weights, and rule toggles.
// Everything here is a tuning decision, not API behavior, so it is
// overridable from policy.yaml.
type Policy struct {
	TitleMaxLength    int     `yaml:"title_max_length"`
	TitleMinLength    int     `yaml:"title_min_length"`
	MetaDescMinLength int     `yaml:"meta_description_min_length"`
	MetaDescMaxLength int     `yaml:"meta_description_max_length"`
	ThinContentWords  int     `yaml:"thin_content_words"`
	LCPThresholdMS    float64 `yaml:"lcp_threshold_ms"`
	CLSThreshold      float64 `yaml:"cls_threshold"`
	TBTThresholdMS    float64 `yaml:"tbt_threshold_ms"`
	URLMaxLength      int     `yaml:"url_max_length"`
	URLMaxQueryParams int     `yaml:"url_max_query_params"`
	MaxOutboundLinks  int     `yaml:"max_outbound_links"`

	Weights SeverityWeights `yaml:"severity_weights"`

	// Codes listed here never fire
	DisabledRules []string `yaml:"disabled_rules"`
}

type SeverityWeights struct {
	Critical float64 `yaml:"critical"`
	Major    float64 `yaml:"major"`
	Minor    float64 `yaml:"minor"`
}

func DefaultPolicy() Policy {
	return Policy{
		TitleMaxLength:    60,
		TitleMinLength:    10,
		MetaDescMinLength: 120,
		MetaDescMaxLength: 155,
		ThinContentWords:  200,
		LCPThresholdMS:    2500,
		CLSThreshold:      0.1,
		TBTThresholdMS:    300,
		URLMaxLength:      100,
		URLMaxQueryParams: 3,
		MaxOutboundLinks:  200,
		Weights: SeverityWeights{
			Critical: 5.0,
			Major:    2.0,
			Minor:    0.5,
		},
	}
}

// RuleEnabled reports whether a rule code is allowed to fire.
func (p *Policy) RuleEnabled(code string) bool {
	for _, c := range p.DisabledRules {
		if c == code {
			return false
		}
	}
	return true
}

// WeightFor maps a severity to its health penalty. Unknown severities weigh
// nothing rather than corrupting the score.
func (w SeverityWeights) WeightFor(severity string) float64 {
	switch severity {
	case "critical":
		return w.Critical
	case "major":
		return w.Major
	case "minor":
		return w.Minor
	}
	return 0
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataForSEO: DataForSEOConfig{
			Login:         os.Getenv("DATAFORSEO_LOGIN"),
			Password:      os.Getenv("DATAFORSEO_PASSWORD"),
			TaskPostURL:   getEnv("DATAFORSEO_TASK_POST_URL", "https://api.dataforseo.com/v3/on_page/task_post"),
			TasksReadyURL: getEnv("DATAFORSEO_TASKS_READY_URL", "https://api.dataforseo.com/v3/on_page/tasks_ready"),
			PagesURL:      getEnv("DATAFORSEO_PAGES_URL", "https://api.dataforseo.com/v3/on_page/pages"),
			MaxCrawlPages: getEnvInt("DATAFORSEO_MAX_PAGES", 500),
		},
		PageSpeed: PageSpeedConfig{
			APIKey:      os.Getenv("PAGESPEED_API_KEY"),
			Endpoint:    getEnv("PAGESPEED_ENDPOINT", "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"),
			Concurrency: getEnvInt("PAGESPEED_CONCURRENCY", 4),
		},
		Export: ExportConfig{
			Bucket:          os.Getenv("REPORT_BUCKET"),
			Region:          getEnv("REPORT_REGION", "us-east-1"),
			Endpoint:        os.Getenv("REPORT_ENDPOINT"),
			AccessKeyID:     os.Getenv("REPORT_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("REPORT_SECRET_ACCESS_KEY"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("AUDIT_CRON"),
		},
		DatabaseURL: getEnv("DATABASE_URL", "seo_auditor.db"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8000"),
		LogPath:     getEnv("LOG_PATH", "auditor.log"),
		Policy:      DefaultPolicy(),
	}

	if interval := os.Getenv("AUDIT_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadPolicy(getEnv("POLICY_PATH", "policy.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadPolicy(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := yaml.Unmarshal(data, &c.Policy); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
