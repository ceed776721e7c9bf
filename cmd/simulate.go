package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/motofix/fieldops/app"
	"github.com/motofix/fieldops/config"
	"github.com/motofix/fieldops/infra/logger"
	"github.com/motofix/fieldops/simulator"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the service with a simulated technician fleet",
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	fleet := simulator.NewFleet(cfg.Simulator, svc.Facade, logger.New("simulator"))
	go fleet.Run(ctx)
	return svc.Run(ctx)
}
