// Package config loads the settings for one report run.
//
// Defaults match the production deployment. An optional YAML file can
// override any of them, and the mail credentials are then taken from the
// environment, which always wins.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/sz-deals/internal/crypto"
)

// Environment variables holding the mail credentials
const (
	EnvAccount   = "EMAIL_ACCOUNT"
	EnvPassword  = "EMAIL_PASSWORD"
	EnvRecipient = "RECIPIENT_EMAIL"
	EnvSecretKey = "EMAIL_SECRET_KEY"
)

const (
	DefaultURL       = "http://clf.zfcjj.suzhou.gov.cn/xsinfo.aspx"
	DefaultTableID   = "ctl00_ContentPlaceHolder1_mytable"
	DefaultEncoding  = "utf-8"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimeout   = 15 * time.Second

	DefaultSMTPHost    = "smtp.126.com"
	DefaultSMTPPort    = 465
	DefaultPreviewRows = 10
)

// Config holds everything a run needs
type Config struct {
	Source   SourceConfig `yaml:"source"`
	SMTP     SMTPConfig   `yaml:"smtp"`
	Mail     MailConfig   `yaml:"mail"`
	LogLevel string       `yaml:"log_level"`
}

// SourceConfig describes the page holding the transaction table
type SourceConfig struct {
	URL       string        `yaml:"url"`
	TableID   string        `yaml:"table_id"`
	Encoding  string        `yaml:"encoding"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// SMTPConfig is the implicit-TLS submission endpoint
type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// MailConfig holds the credentials and report options.
// Password may be sealed (see crypto.Seal); SecretKey opens it.
type MailConfig struct {
	Account     string `yaml:"account"`
	Password    string `yaml:"password"`
	Recipient   string `yaml:"recipient"`
	SecretKey   string `yaml:"-"`
	PreviewRows int    `yaml:"preview_rows"`
}

// Default returns the production settings without credentials.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:       DefaultURL,
			TableID:   DefaultTableID,
			Encoding:  DefaultEncoding,
			UserAgent: DefaultUserAgent,
			Timeout:   DefaultTimeout,
		},
		SMTP: SMTPConfig{
			Host: DefaultSMTPHost,
			Port: DefaultSMTPPort,
		},
		Mail: MailConfig{
			PreviewRows: DefaultPreviewRows,
		},
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the optional YAML file at path and
// the environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overrides the credentials with any non-empty environment values.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Mail.Account, EnvAccount)
	set(&c.Mail.Password, EnvPassword)
	set(&c.Mail.Recipient, EnvRecipient)
	set(&c.Mail.SecretKey, EnvSecretKey)
}

// Validate fails when any credential is missing or a setting is unusable.
// It is checked before any network activity.
func (c *Config) Validate() error {
	var missing []string
	if c.Mail.Account == "" {
		missing = append(missing, EnvAccount)
	}
	if c.Mail.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if c.Mail.Recipient == "" {
		missing = append(missing, EnvRecipient)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Source.URL == "" {
		return fmt.Errorf("source url is required")
	}
	if c.Source.TableID == "" {
		return fmt.Errorf("source table_id is required")
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive, got %s", c.Source.Timeout)
	}
	if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
		return fmt.Errorf("invalid smtp endpoint %s:%d", c.SMTP.Host, c.SMTP.Port)
	}
	if c.Mail.PreviewRows < 0 {
		return fmt.Errorf("preview_rows must not be negative")
	}
	return nil
}

// ResolvePassword opens a sealed password with SecretKey and stores the
// result back into Mail.Password. Plain passwords are left as they are.
func (c *Config) ResolvePassword() error {
	if !crypto.IsSealed(c.Mail.Password) {
		return nil
	}
	if c.Mail.SecretKey == "" {
		return fmt.Errorf("%s is sealed but %s is not set", EnvPassword, EnvSecretKey)
	}
	password, err := crypto.Open(c.Mail.SecretKey, c.Mail.Password)
	if err != nil {
		return fmt.Errorf("opening %s: %w", EnvPassword, err)
	}
	c.Mail.Password = password
	return nil
}
