// cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/scalpel-humanoid/api/schemas"
	"github.com/xkilldash9x/scalpel-humanoid/internal/browser"
	"github.com/xkilldash9x/scalpel-humanoid/internal/config"
	"github.com/xkilldash9x/scalpel-humanoid/internal/humanoid"
	"github.com/xkilldash9x/scalpel-humanoid/internal/observability"
	"github.com/xkilldash9x/scalpel-humanoid/internal/runner"
)

// browserSession is the part of a browser session the run command drives.
type browserSession interface {
	runner.Page
	ID() string
	Driver() humanoid.Driver
	Close()
}

// sessionFactory opens a browser session. Tests replace it to avoid launching a browser.
var sessionFactory = func(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browserSession, error) {
	return browser.NewSession(ctx, cfg, logger)
}

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	var output string

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the configured script in one or more browser sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFromContext(ctx)
			if err != nil {
				return err
			}
			if cfg.Script().URL == "" && len(cfg.Script().Steps) == 0 {
				return fmt.Errorf("nothing to run: set script.url or script.steps")
			}

			out := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create report file: %w", err)
				}
				defer f.Close()
				out = f
			}
			return runScript(ctx, cfg, observability.GetLogger(), out)
		},
	}

	runCmd.Flags().Int("sessions", 1, "Number of parallel browser sessions")
	runCmd.Flags().Bool("headless", true, "Run the browser without a visible window")
	runCmd.Flags().String("url", "", "Page to open before the scripted steps")
	runCmd.Flags().Int64("seed", 0, "Seed for the behaviour engine (0 seeds from the clock)")
	runCmd.Flags().StringVarP(&output, "output", "o", "", "Write the JSON report to a file instead of stdout")
	return runCmd
}

// runScript drives every session in parallel and writes their reports as JSON.
// It fails when a session cannot start or any session's script fails.
func runScript(ctx context.Context, cfg config.Interface, logger *zap.Logger, out io.Writer) error {
	runID := uuid.New().String()
	logger = logger.With(zap.String("run_id", runID))
	sessions := cfg.Browser().Sessions
	if sessions < 1 {
		sessions = 1
	}

	reports := make([]*schemas.RunReport, sessions)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < sessions; i++ {
		g.Go(func() error {
			report, err := runSession(gctx, i, runID, cfg, logger)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	failed := 0
	for _, r := range reports {
		if !r.Succeeded {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d session(s) failed", failed, sessions)
	}
	logger.Info("Run complete.", zap.Int("sessions", sessions))
	return nil
}

// runSession opens one browser session and executes the script in it.
func runSession(ctx context.Context, index int, runID string, cfg config.Interface, logger *zap.Logger) (*schemas.RunReport, error) {
	session, err := sessionFactory(ctx, cfg.Browser(), logger)
	if err != nil {
		return nil, fmt.Errorf("session %d: failed to start browser: %w", index, err)
	}
	defer session.Close()

	settings := cfg.Humanoid()
	if settings.Seed != 0 {
		// Each session draws from its own seed.
		settings.Seed += int64(index)
	}
	sessionLogger := logger.With(zap.String("session_id", session.ID()))
	engine := humanoid.New(humanoid.NewConfigFromSettings(settings), sessionLogger, session.Driver())

	return runner.NewExecutor(sessionLogger, engine, session).Run(ctx, runID, session.ID(), cfg.Script()), nil
}
