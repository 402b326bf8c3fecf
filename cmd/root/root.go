// Package root contains the root command for the application
package root

import (
	"errors"

	"github.com/spf13/cobra"

	"fjacquet/fintrack/internal/config"
	"fjacquet/fintrack/internal/container"
	"fjacquet/fintrack/internal/logging"
)

// CommonFlags represents the flags shared by every command.
type CommonFlags struct {
	Config   string
	Database string
	Rules    string
}

var (
	// Log is the shared logger instance for commands. main replaces it with
	// an environment-configured logger and Setup replaces it again once the
	// configuration is loaded.
	Log = logging.NewDiscardLogger()

	// AppContainer is built by Setup before any subcommand runs.
	AppContainer *container.Container

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "fintrack",
		Short: "Track CIBC bank and credit card statements in a local categorized ledger.",
		Long: `fintrack parses CIBC bank-account and credit-card statements, stores each
transaction once in a local SQLite ledger, categorizes it with keyword rules
and mirrors the ledger to Google Sheets or CSV.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Teardown()
		},
	}
)

// Init registers the persistent flags.
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.Config, "config", "", "Config file (default: config.yaml in ., .fintrack or $HOME/.fintrack)")
	flags.StringVar(&SharedFlags.Database, "db", "", "SQLite database file (overrides database.path)")
	flags.StringVar(&SharedFlags.Rules, "rules", "", "Category rule file (overrides rules.file)")
}

// LoadConfig loads configuration and applies flag overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(SharedFlags.Config)
	if err != nil {
		return nil, err
	}
	if SharedFlags.Database != "" {
		cfg.Database.Path = SharedFlags.Database
	}
	if SharedFlags.Rules != "" {
		cfg.Rules.File = SharedFlags.Rules
	}
	return cfg, nil
}

// Setup loads configuration and builds the dependency container.
func Setup() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	AppContainer = c
	Log = c.GetLogger()
	return nil
}

// Teardown closes the container.
func Teardown() {
	if AppContainer == nil {
		return
	}
	if err := AppContainer.Close(); err != nil {
		Log.WithError(err).Warn("Failed to close container")
	}
	AppContainer = nil
}

// GetContainer returns the container built by Setup.
func GetContainer() (*container.Container, error) {
	if AppContainer == nil {
		return nil, errors.New("application container is not initialized")
	}
	return AppContainer, nil
}
