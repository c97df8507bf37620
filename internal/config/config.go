package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything a weekly run needs: directories, tracked
// sources, detection thresholds, and the credentials for the strategy
// and delivery collaborators. Secrets come from the environment, never
// from the persisted config file.
type Config struct {
	DataDir  string `json:"data_dir"`
	CacheDir string `json:"cache_dir"`

	// Tracked sources
	Keywords     []string `json:"keywords"`
	Subreddits   []string `json:"subreddits"`
	WikiArticles []string `json:"wiki_articles"`
	QuoraQueries []string `json:"quora_queries"`

	// Detection thresholds (configuration, not law)
	BreakoutThresholdPct float64 `json:"breakout_threshold_pct"`
	BreakoutNoiseFloor   float64 `json:"breakout_noise_floor"`
	EstablishedTrendPct  float64 `json:"established_trend_pct"`
	MinKeywordInterest   float64 `json:"min_keyword_interest"`
	MinTopicScore        int     `json:"min_topic_score"`
	MinTermLength        int     `json:"min_term_length"`
	TopEngagement        int     `json:"top_engagement"`
	RecencyDays          int     `json:"recency_days"`
	DefaultTheme         string  `json:"default_theme"`

	CacheEnabled bool   `json:"cache_enabled"`
	LogLevel     string `json:"log_level"`

	// Strategy collaborator (env only)
	AnthropicAPIKey string `json:"-"`
	AnthropicModel  string `json:"anthropic_model"`
	MaxTokens       int    `json:"max_tokens"`

	// Delivery collaborator
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     string `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"-"`
	EmailFrom    string `json:"email_from"`
	EmailTo      string `json:"email_to"`
}

// DefaultConfig returns the config a fresh install starts from.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	return &Config{
		DataDir:  filepath.Join(currentDir, "data"),
		CacheDir: filepath.Join(currentDir, "data", "cache"),

		Keywords: []string{
			"lower back pain", "neck pain", "sciatica", "herniated disc",
			"hip pain", "shoulder pain", "knee pain", "plantar fasciitis",
			"forward head posture", "posture correction", "foam rolling",
			"mobility exercises", "yoga for back pain", "runner's knee",
			"longevity exercises",
		},
		Subreddits: []string{
			"ChronicPain", "backpain", "Sciatica", "Fibromyalgia",
			"flexibility", "posture", "bodyweightfitness", "PhysicalTherapy",
		},
		WikiArticles: []string{
			"Low_back_pain", "Sciatica", "Neck_pain", "Poor_posture",
			"Kyphosis", "Plantar_fasciitis",
		},
		QuoraQueries: []string{
			"chronic back pain exercises", "fix posture", "sciatica relief",
		},

		BreakoutThresholdPct: 15,
		BreakoutNoiseFloor:   100,
		EstablishedTrendPct:  20,
		MinKeywordInterest:   15,
		MinTopicScore:        50,
		MinTermLength:        3,
		TopEngagement:        5,
		RecencyDays:          7,
		DefaultTheme:         "General Pain Management",

		CacheEnabled: true,
		LogLevel:     "info",

		AnthropicModel: "claude-sonnet-4-20250514",
		MaxTokens:      4096,

		SMTPPort: "587",
	}
}

// LoadEnv overlays secrets and overrides from a .env file (if present)
// and the process environment.
func (c *Config) LoadEnv() {
	_ = godotenv.Load()

	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.AnthropicModel, "ANTHROPIC_MODEL")
	setString(&c.SMTPHost, "SMTP_HOST")
	setString(&c.SMTPPort, "SMTP_PORT")
	setString(&c.SMTPUser, "SMTP_USER")
	setString(&c.SMTPPassword, "SMTP_PASSWORD")
	setString(&c.EmailFrom, "EMAIL_FROM")
	setString(&c.EmailTo, "EMAIL_TO")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.DataDir, "TRENDWATCH_DATA_DIR")

	if v, ok := os.LookupEnv("TRENDWATCH_MAX_TOKENS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxTokens = n
		}
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// EnsureDirectories creates the data and cache trees.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.CacheDir,
		filepath.Join(c.CacheDir, "trends"),
		filepath.Join(c.CacheDir, "reddit"),
		filepath.Join(c.CacheDir, "wikipedia"),
		filepath.Join(c.CacheDir, "quora"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
