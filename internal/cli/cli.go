package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/sz-deals/internal/config"
	"github.com/pfrederiksen/sz-deals/internal/crypto"
	"github.com/pfrederiksen/sz-deals/internal/logger"
	"github.com/pfrederiksen/sz-deals/internal/notifier"
	"github.com/pfrederiksen/sz-deals/internal/scraper"
	"github.com/pfrederiksen/sz-deals/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagDryRun   bool
	flagOutDir   string
	flagFormat   string
	flagLogLevel string
	flagVerbose  bool
	flagKey      string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sz-deals",
		Short: "Mail the daily Suzhou housing transaction summary",
		Long: `Fetches the Suzhou housing bureau sales table, summarises it per region
and mails the result as an xlsx attachment with a text preview.
Runs once and exits; schedule it externally.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runReport,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "Optional YAML config file")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the mail instead of sending it")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Also write the workbook and a JSON dump to this directory")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")

	cmd.AddCommand(newEncryptSecretCmd())

	return cmd
}

// runReport is the main command logic
func runReport(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	levelName := cfg.LogLevel
	if flagLogLevel != "" {
		levelName = flagLogLevel
	} else if flagVerbose {
		levelName = logger.LevelDebug.String()
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ResolvePassword(); err != nil {
		return err
	}

	var n notifier.Notifier
	if flagDryRun {
		n = notifier.NewDryRunNotifier(cmd.OutOrStdout(), cfg.Mail.Recipient)
	} else {
		n, err = notifier.NewMailNotifier(notifier.MailConfig{
			Host:      cfg.SMTP.Host,
			Port:      cfg.SMTP.Port,
			Account:   cfg.Mail.Account,
			Password:  cfg.Mail.Password,
			Recipient: cfg.Mail.Recipient,
		})
		if err != nil {
			return fmt.Errorf("initializing mail: %w", err)
		}
	}

	job := &Job{
		Fetcher:     scraper.New(cfg.Source),
		Process:     DefaultProcess,
		Notifier:    n,
		Recipient:   cfg.Mail.Recipient,
		PreviewRows: cfg.Mail.PreviewRows,
		DryRun:      flagDryRun,
	}

	if flagOutDir != "" {
		store, err := storage.New(flagOutDir)
		if err != nil {
			return fmt.Errorf("initializing output directory: %w", err)
		}
		job.Storage = store
	}

	out := cmd.OutOrStdout()
	if format == FormatText {
		fmt.Fprintln(out, Banner)
	}

	result := job.Run(cmd.Context())

	logger.Debug("Run metrics", logger.Fields{"metrics": logger.GetMetricsSnapshot()})

	if err := WriteOutput(out, result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func newEncryptSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt-secret",
		Short: "Seal an SMTP password read from stdin",
		Long: `Reads the SMTP password from the first line of stdin and prints it sealed
with the given key. Put the output in EMAIL_PASSWORD and the key in
EMAIL_SECRET_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := flagKey
			if key == "" {
				key = os.Getenv(config.EnvSecretKey)
			}
			if key == "" {
				return fmt.Errorf("--key or %s is required", config.EnvSecretKey)
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading secret: %w", err)
			}
			secret := strings.TrimRight(line, "\r\n")
			if secret == "" {
				return fmt.Errorf("secret is empty")
			}

			sealed, err := crypto.Seal(key, secret)
			if err != nil {
				return fmt.Errorf("sealing secret: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return nil
		},
	}

	cmd.Flags().StringVar(&flagKey, "key", "", "Passphrase (or env: EMAIL_SECRET_KEY)")

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
