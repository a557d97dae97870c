package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cryptellation/compliance/pkg/config"
	"github.com/cryptellation/compliance/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	cfg        *config.Config
)

func newRootCmd() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:           "compliance",
		Short:         "Compliance checks the licenses of your products' dependencies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			return logging.Init(cfg.LogLevel)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			logging.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	rootCmd.AddCommand(
		newModelsCmd(),
		newEvaluateCmd(),
		newConflictsCmd(),
		newImportCmd(),
		newResolveCmd(),
		newAuditCmd(),
	)
	return rootCmd
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.L().Error("Command execution failed", zap.Error(err))
		os.Exit(1)
	}
}
