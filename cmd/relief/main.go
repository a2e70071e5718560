package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relief-go/internal/app"
	"relief-go/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a ReliefApp. The caller must defer a.Close().
// operation names the CLI command being run (e.g. "household add").
func newApp(operation string) (*app.ReliefApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config (run `relief config init` first): %w", err)
	}

	a, err := app.NewReliefApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// newSessionApp is newApp for commands that need a logged-in user.
func newSessionApp(operation string) (*app.ReliefApp, error) {
	a, err := newApp(operation)
	if err != nil {
		return nil, err
	}
	if _, err := a.RequireUser(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// finish prints the outcome of a mutating command. Warnings and errors go to
// stderr; a failed outcome is returned as an error so the exit code is 1.
func finish(cmd *cobra.Command, o *app.Outcome) error {
	if o.Level == app.LevelSuccess {
		fmt.Fprintln(cmd.OutOrStdout(), o)
		return nil
	}
	fmt.Fprintln(cmd.ErrOrStderr(), o)
	if o.Failed() {
		return fmt.Errorf("%s failed", o.Operation)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:           "relief",
	Short:         "Community relief registry",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		storeType, _ := cmd.Flags().GetString("store")
		switch storeType {
		case "filesystem":
		case "sqlite":
			cfg.Store = config.StoreConfig{Type: "sqlite", Path: defaults["base_dir"] + "/relief.db"}
		default:
			return fmt.Errorf("config init supports filesystem or sqlite; edit the file for %s", storeType)
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", defaults["config_path"])
		fmt.Fprintf(out, "Data Dir: %s\n", cfg.DataDir)
		fmt.Fprintf(out, "Store:    %s\n", cfg.Store.Type)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults["config_path"])
		fmt.Fprintf(out, "Data Dir:         %s\n", cfg.DataDir)
		fmt.Fprintf(out, "Log Dir:          %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Log Level:        %s (%s)\n", cfg.Log.Level, cfg.Log.Format)
		fmt.Fprintf(out, "Store:            %s\n", cfg.Store.Type)
		fmt.Fprintf(out, "Household Delete: %s\n", cfg.Integrity.HouseholdDelete)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("store", "filesystem", "Store type to configure (filesystem or sqlite)")

	rootCmd.AddCommand(configCmd)
}
