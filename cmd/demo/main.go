package main

import (
	"context"
	"fmt"
	"os"

	"SingletonLab/internal/app"
	"SingletonLab/pkg/config"
	"SingletonLab/pkg/logger"
	"SingletonLab/pkg/metrics"
	"SingletonLab/pkg/teardown"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dumpMetrics bool
	workers     int
)

func main() {
	root := &cobra.Command{
		Use:               "demo",
		Short:             "Singleton lifetime demonstrations",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runDerived,
	}
	root.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print lifecycle metrics before exit")

	raceCmd := &cobra.Command{
		Use:   "race",
		Short: "Race first access from many goroutines",
		RunE: func(cmd *cobra.Command, args []string) error {
			n := workers
			if n <= 0 {
				n = config.Get().DemoWorkers
			}
			_, err := app.RunRace(cmd.OutOrStdout(), n)
			return err
		},
	}
	raceCmd.Flags().IntVarP(&workers, "workers", "n", 0, "number of goroutines (default DEMO_WORKERS)")

	root.AddCommand(
		&cobra.Command{
			Use:   "derived",
			Short: "Fetch the token-gated singleton twice",
			RunE:  runDerived,
		},
		raceCmd,
		&cobra.Command{
			Use:   "global",
			Short: "Walk the managed global through New, Get and Delete",
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.RunGlobal(cmd.OutOrStdout())
			},
		},
	)

	err := root.Execute()
	if shutdownErr := shutdown(); err == nil {
		err = shutdownErr
	}
	if err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.Load(); err != nil {
		return err
	}
	cfg := config.Get()
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	if cfg.MetricsEnabled || dumpMetrics {
		metrics.SetGlobal(metrics.NewCollector(cfg.MetricsNamespace))
	}
	logger.Debug("config loaded", zap.String("mode", cfg.Mode))
	return nil
}

func runDerived(cmd *cobra.Command, args []string) error {
	if !app.RunDerived(cmd.OutOrStdout()) {
		return fmt.Errorf("derived singleton returned two different instances")
	}
	return nil
}

// shutdown 逆序销毁所有已构造的单例，然后输出指标
func shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), config.Get().TeardownTimeout)
	defer cancel()

	err := teardown.Run(ctx)
	if err != nil {
		logger.Error("teardown failed", zap.Error(err))
	}

	if dumpMetrics && metrics.IsGlobalEnabled() {
		families, gatherErr := metrics.Global().Gatherer().Gather()
		if gatherErr != nil {
			return gatherErr
		}
		for _, mf := range families {
			if _, werr := expfmt.MetricFamilyToText(os.Stdout, mf); werr != nil {
				return werr
			}
		}
	}
	_ = logger.Sync()
	return err
}
