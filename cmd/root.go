// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// flagBindings maps command line flags onto their configuration keys.
// Flags override the config file and environment only when set explicitly.
var flagBindings = map[string]string{
	"sessions": "browser.sessions",
	"headless": "browser.headless",
	"url":      "script.url",
	"seed":     "humanoid.seed",
}

// newRootCmd builds the command tree. A fresh tree per call keeps tests isolated.
func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "scalpel-humanoid",
		Short:   "Drives a browser through scripted actions with human-like timing and motion.",
		Version: Version,
		// Execute reports the error itself; a failed run must leave stdout
		// holding only the JSON report.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := bindFlags(v, cmd); err != nil {
				return err
			}

			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				// Initialize a fallback logger so the failure is still reported.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "scalpel-humanoid"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Info("Starting scalpel-humanoid", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// bindFlags binds the flags the invoked command defines to their config keys.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagBindings {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// configFromContext returns the configuration stored by the root command.
func configFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in command context")
	}
	return cfg, nil
}

// Execute runs the root command under ctx and exits non-zero on failure.
func Execute(ctx context.Context) {
	defer observability.Sync()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		observability.Sync()
		os.Exit(1)
	}
}
