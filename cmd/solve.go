package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lmeyrat/transopt/app"
	"github.com/lmeyrat/transopt/config"
	"github.com/lmeyrat/transopt/infra/logger"
	_ "github.com/lmeyrat/transopt/infra/metrics"
)

var (
	outDir       string
	solveTimeout time.Duration
	solveTol     float64
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Assemble and solve a case, writing the result tables",
	RunE:  solveCase,
}

func init() {
	solveCmd.Flags().StringVar(&outDir, "out", "results", "output directory")
	solveCmd.Flags().DurationVar(&solveTimeout, "timeout", 0, "solve timeout, overrides the case document")
	solveCmd.Flags().Float64Var(&solveTol, "tol", 0, "simplex tolerance, overrides the case document")
	rootCmd.AddCommand(solveCmd)
}

func solveCase(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load case: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}

	caseName := strings.TrimSuffix(filepath.Base(cfgPath), filepath.Ext(cfgPath))
	runDir, err := svc.Run(ctx, app.Options{
		CaseName: caseName,
		OutDir:   outDir,
		Timeout:  solveTimeout,
		Tol:      solveTol,
	})
	if err != nil {
		return err
	}
	logger.New("solve").Infof("results written to %s", runDir)
	return nil
}
