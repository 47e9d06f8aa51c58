package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lmeyrat/transopt/app"
	"github.com/lmeyrat/transopt/config"
	"github.com/lmeyrat/transopt/infra/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a case document without solving it",
	RunE:  validateCase,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateCase(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load case: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	st, err := svc.Validate()
	if err != nil {
		return err
	}
	logger.New("validate").Infof("case valid: %d elements, %d odpairs, %d tech vehicles, horizon %d-%d",
		len(st.Elements), len(st.Odpairs), len(st.TechVehicles), st.Horizon.YInit, st.Horizon.YEnd())
	return nil
}
