package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/waajacu/minerals/internal/ai"
	"github.com/waajacu/minerals/internal/archive"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/i18n"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// Service configuration
	DataRoot             string
	AdminPassword        string
	DefaultLang          string
	TranslateTimeout     time.Duration
	TranslateConcurrency int

	// HTTP configuration
	Host string
	Port int

	AI      ai.Config
	Archive archive.Config
}

// Defaults for values that have no flag.
const (
	DefaultDataRoot    = "data"
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 7979
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (applied later by cobra)
//  2. Environment variables
//  3. .env and .env.local
//  4. Config file (.minerals.yaml in the working or home directory)
//  5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("data_root", DefaultDataRoot)
	v.SetDefault("host", DefaultHost)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("openai_model", DefaultOpenAIModel)
	v.SetDefault("gemini_model", DefaultGeminiModel)
	v.SetDefault("translate_timeout", constants.TranslateTimeout)
	v.SetDefault("translate_concurrency", constants.DefaultTranslateConcurrency)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	// Gemini accepts either key name.
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	if file := os.Getenv("MINERALS_CONFIG"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".minerals")
	}
	// A missing config file is fine.
	_ = v.ReadInConfig()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),

		DataRoot:             v.GetString("data_root"),
		AdminPassword:        v.GetString("admin_password"),
		DefaultLang:          v.GetString("default_lang"),
		TranslateTimeout:     v.GetDuration("translate_timeout"),
		TranslateConcurrency: v.GetInt("translate_concurrency"),

		Host: v.GetString("host"),
		Port: v.GetInt("port"),

		AI: ai.Config{
			Provider:    v.GetString("ai_provider"),
			OpenAIKey:   v.GetString("openai_api_key"),
			OpenAIModel: v.GetString("openai_model"),
			GeminiKey:   v.GetString("gemini_api_key"),
			GeminiModel: v.GetString("gemini_model"),
		},
		Archive: archive.Config{
			Bucket:    v.GetString("archive_s3_bucket"),
			Region:    v.GetString("archive_s3_region"),
			Endpoint:  v.GetString("archive_s3_endpoint"),
			AccessKey: v.GetString("archive_s3_access_key"),
			SecretKey: v.GetString("archive_s3_secret_key"),
			Prefix:    v.GetString("archive_s3_prefix"),
		},
	}
}

// Language returns the configured default language. ok is false when
// DEFAULT_LANG is set to an unsupported code; the base language is returned
// in that case.
func (c *Config) Language() (code i18n.Code, ok bool) {
	if strings.TrimSpace(c.DefaultLang) == "" {
		return i18n.Base(), true
	}
	if code, ok := i18n.ParseCode(c.DefaultLang); ok {
		return code, true
	}
	return i18n.Base(), false
}

// UpdateFromFlags applies parsed persistent flags. Flags that were not set
// keep the value from config and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, dataRoot string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if dataRoot != "" {
		c.DataRoot = dataRoot
	}
}

// loadEnvFiles loads .env files; .env.local values do not override .env
// values already set, and neither overrides the real environment.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}
