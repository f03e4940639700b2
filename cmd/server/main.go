package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alcyxob/ifit-coach/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "ifit-coach",
		Short:         "Fitness assessment and trainer-reviewed workout plans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory holding config.yaml and .env")
	root.AddCommand(newServeCmd(), newHashPasswordCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger picks the zap preset for the configured environment.
func newLogger(cfg config.ServerConfig) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
