package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budgets/internal/cli"
	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long: `Authenticate with external services.

Dataverse uses client credentials from the config file and needs no
interactive step. Google Sheets with a user account needs a saved token.`,
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Open a local callback server and print the Google consent URL
2. Exchange the returned code for a token
3. Save the token to sheets.token_file for the sheets backend

An existing token is refreshed instead when it is still usable.`,
		Args: cobra.NoArgs,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("callback-addr", "", "local address for the OAuth2 redirect (default localhost:8080)")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.LoadSheetsConfig()

	// Override with flags if provided
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		cfg.ClientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		cfg.ClientSecret = flagSecret
	}
	callbackAddr, _ := cmd.Flags().GetString("callback-addr")

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return errors.New("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = config.DefaultTokenFile()
	}

	slog.Info("Starting Google Sheets authentication", "token_file", cfg.TokenFile)

	if _, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenFile:    cfg.TokenFile,
		CallbackAddr: callbackAddr,
	}); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets token saved to "+cfg.TokenFile))
	return err
}
