package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/config"
)

var (
	cfgFile string
	logFile *os.File
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "budgets",
		Short: "💰 Edit budgets inline from the terminal",
		Long: `budgets: An editable grid over the promx_budget entity.

Rows are loaded from the configured store (Dataverse, SQLite, Postgres or a
Google Sheets tab). Edit a cell and leave it to save that one field.`,
		PersistentPreRunE: initConfig,
		RunE:              runGrid,
		SilenceUsage:      true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/budgets/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("backend", "", "store backend (dataverse, sqlite, postgres, sheets)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))

	addGridFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(gridCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if logFile != nil {
		_ = logFile.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/budgets", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("BUDGETS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults()
	viper.SetDefault("tui.breakpoint", 80)
	viper.SetDefault("tui.theme", "default")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	// Set up logging
	if err := setupLogging(ownsTerminal(cmd)); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

// ownsTerminal reports whether cmd draws the full-screen grid, which must
// not be interleaved with log output.
func ownsTerminal(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "grid"
}

func setupLogging(fullScreen bool) error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}

	path := viper.GetString("logging.file")
	if path == "" && fullScreen {
		path = config.DefaultLogFile()
	}

	w := os.Stderr
	if path != "" {
		f, err := common.OpenLogFile(config.ExpandPath(path))
		if err != nil {
			return err
		}
		logFile = f
		w = f
	}

	return common.SetupLogger(w, level, viper.GetString("logging.format"))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "budgets version "+version)
		},
	}
}

// logger returns the default logger tagged with the command name.
func logger(cmd *cobra.Command) *slog.Logger {
	return slog.Default().With("command", cmd.Name())
}
