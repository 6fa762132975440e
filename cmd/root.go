package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "vendor-matcher"
)

type Config struct {
	Sheets *SheetsConfig `mapstructure:"sheets"`
	AI     *AIConfig     `mapstructure:"ai"`
	Server *ServerConfig `mapstructure:"server"`
}

type SheetsConfig struct {
	SpreadsheetID       string        `mapstructure:"spreadsheet-id"`
	ServiceAccountEmail string        `mapstructure:"service-account-email"`
	PrivateKey          string        `mapstructure:"private-key"`
	PrivateKeyFile      string        `mapstructure:"private-key-file"`
	VendorsTable        string        `mapstructure:"vendors-table"`
	RatingsTable        string        `mapstructure:"ratings-table"`
	CacheTTL            time.Duration `mapstructure:"cache-ttl"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	Enabled      bool           `mapstructure:"enabled"`
	Provider     string         `mapstructure:"provider"`
	Timeout      time.Duration  `mapstructure:"timeout"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	OpenAI       *OpenAIConfig  `mapstructure:"openai"`
	Gemini       *GeminiConfig  `mapstructure:"gemini"`
	Breaker      *BreakerConfig `mapstructure:"breaker"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type BreakerConfig struct {
	FailureThreshold uint32        `mapstructure:"failure-threshold"`
	OpenTimeout      time.Duration `mapstructure:"open-timeout"`
}

type ServerConfig struct {
	Addr      string           `mapstructure:"addr"`
	RateLimit *RateLimitConfig `mapstructure:"rate-limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests-per-minute"`
	Burst             int `mapstructure:"burst"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vendor-matcher recommends vendors from a Google Sheets roster for a project",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"sheets.spreadsheet-id":        "GOOGLE_SHEET_ID",
	"sheets.service-account-email": "GOOGLE_SERVICE_ACCOUNT_EMAIL",
	"sheets.private-key":           "GOOGLE_PRIVATE_KEY_BASE64",
	"sheets.private-key-file":      "GOOGLE_PRIVATE_KEY_FILE",
	"ai.openai.api-key":            "OPENAI_API_KEY",
	"ai.openai.api-key-file":       "OPENAI_API_KEY_FILE",
	"ai.gemini.api-key":            "GEMINI_API_KEY",
	"ai.gemini.api-key-file":       "GEMINI_API_KEY_FILE",
	"server.addr":                  "VENDOR_MATCHER_ADDR",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vendor-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sheets.vendors-table", "Vendors")
	v.SetDefault("sheets.ratings-table", "Ratings")
	v.SetDefault("sheets.cache-ttl", 5*time.Minute)
	v.SetDefault("sheets.timeout", 15*time.Second)
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", providerOpenAI)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.breaker.failure-threshold", 5)
	v.SetDefault("ai.breaker.open-timeout", time.Minute)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate-limit.requests-per-minute", 30)
	v.SetDefault("server.rate-limit.burst", 5)
}

func initConfig() {
	// Only the commands talking to the spreadsheet need a config.
	if recommendCmd.CalledAs() == "" && serveCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without an explicit file the environment alone may be enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
