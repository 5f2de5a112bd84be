package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/sz-deals/internal/crypto"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func validConfig() *Config {
	cfg := Default()
	cfg.Mail.Account = "sender@126.com"
	cfg.Mail.Password = "auth-code"
	cfg.Mail.Recipient = "reader@example.com"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Source.URL != DefaultURL {
		t.Errorf("URL = %q, want %q", cfg.Source.URL, DefaultURL)
	}
	if cfg.Source.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Source.Timeout)
	}
	if cfg.SMTP.Host != "smtp.126.com" || cfg.SMTP.Port != 465 {
		t.Errorf("SMTP = %+v, want smtp.126.com:465", cfg.SMTP)
	}
	if cfg.Mail.PreviewRows != 10 {
		t.Errorf("PreviewRows = %d, want 10", cfg.Mail.PreviewRows)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Mail.Account = "from-file@126.com"

	cfg.ApplyEnv(envMap(map[string]string{
		EnvAccount:   "  env@126.com ",
		EnvPassword:  "secret",
		EnvRecipient: "",
		EnvSecretKey: "key",
	}))

	if cfg.Mail.Account != "env@126.com" {
		t.Errorf("Account = %q, want env override", cfg.Mail.Account)
	}
	if cfg.Mail.Password != "secret" {
		t.Errorf("Password = %q, want secret", cfg.Mail.Password)
	}
	if cfg.Mail.Recipient != "" {
		t.Errorf("Recipient = %q, empty env should not override", cfg.Mail.Recipient)
	}
	if cfg.Mail.SecretKey != "key" {
		t.Errorf("SecretKey = %q, want key", cfg.Mail.SecretKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "all credentials missing",
			mutate:  func(c *Config) { c.Mail = MailConfig{PreviewRows: 10} },
			wantErr: "EMAIL_ACCOUNT, EMAIL_PASSWORD, RECIPIENT_EMAIL",
		},
		{
			name:    "recipient missing",
			mutate:  func(c *Config) { c.Mail.Recipient = "" },
			wantErr: "RECIPIENT_EMAIL",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Source.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "bad smtp port",
			mutate:  func(c *Config) { c.SMTP.Port = 0 },
			wantErr: "smtp",
		},
		{
			name:    "missing table id",
			mutate:  func(c *Config) { c.Source.TableID = "" },
			wantErr: "table_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvAccount, "")
	t.Setenv(EnvPassword, "")
	t.Setenv(EnvRecipient, "env-reader@example.com")
	t.Setenv(EnvSecretKey, "")

	path := filepath.Join(t.TempDir(), "sz-deals.yaml")
	content := `
source:
  timeout: 5s
  encoding: gb18030
smtp:
  port: 994
mail:
  account: file@126.com
  password: file-secret
  recipient: file-reader@example.com
  preview_rows: 3
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Source.Timeout)
	}
	if cfg.Source.Encoding != "gb18030" {
		t.Errorf("Encoding = %q, want gb18030", cfg.Source.Encoding)
	}
	if cfg.Source.URL != DefaultURL {
		t.Errorf("URL = %q, default should survive a partial file", cfg.Source.URL)
	}
	if cfg.SMTP.Host != DefaultSMTPHost || cfg.SMTP.Port != 994 {
		t.Errorf("SMTP = %+v", cfg.SMTP)
	}
	if cfg.Mail.Account != "file@126.com" {
		t.Errorf("Account = %q, want value from file", cfg.Mail.Account)
	}
	if cfg.Mail.Recipient != "env-reader@example.com" {
		t.Errorf("Recipient = %q, env should override file", cfg.Mail.Recipient)
	}
	if cfg.Mail.PreviewRows != 3 {
		t.Errorf("PreviewRows = %d, want 3", cfg.Mail.PreviewRows)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with missing file expected error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("source: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid YAML expected error")
	}
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv(EnvAccount, "a@126.com")
	t.Setenv(EnvPassword, "p")
	t.Setenv(EnvRecipient, "r@example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestResolvePassword(t *testing.T) {
	sealed, err := crypto.Seal("passphrase", "auth-code")
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	tests := []struct {
		name      string
		password  string
		secretKey string
		want      string
		wantErr   bool
	}{
		{name: "plain", password: "auth-code", want: "auth-code"},
		{name: "sealed", password: sealed, secretKey: "passphrase", want: "auth-code"},
		{name: "sealed without key", password: sealed, wantErr: true},
		{name: "sealed with wrong key", password: sealed, secretKey: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Mail.Password = tt.password
			cfg.Mail.SecretKey = tt.secretKey

			err := cfg.ResolvePassword()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Mail.Password != tt.want {
				t.Errorf("Password = %q, want %q", cfg.Mail.Password, tt.want)
			}
		})
	}
}
