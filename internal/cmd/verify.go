package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/noiseparams/internal/samplestore"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that archived samples still reproduce",
	Long: `Redraw every record of an archive written by the record command with the
currently configured parameters and compare the result bit for bit.

The command fails when a record no longer reproduces or its parameter is no
longer configured.`,
	Example: "  noiseparams verify --db golden.sqlite",
	RunE:    runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("db", "samples.sqlite", "Archive file")

	if err := viper.BindPFlag("verify.db", verifyCmd.Flags().Lookup("db")); err != nil {
		panic(fmt.Sprintf("failed to bind flag db: %v", err))
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	dbFile := viper.GetString("verify.db")

	params, err := loadParams()
	if err != nil {
		return err
	}

	r, err := samplestore.OpenReader(dbFile)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	meta, err := r.Metadata()
	if err != nil {
		return err
	}
	logger.Info("Verifying archive", "db", dbFile, "name", meta.Name, "created", meta.Created)

	ctx, cancel := interruptContext()
	defer cancel()

	v := &samplestore.Verifier{Params: params, Logger: logger}
	report, err := v.Verify(ctx, r)
	if err != nil {
		return err
	}

	logger.Info("Verification complete",
		"checked", report.Checked,
		"matched", report.Matched,
		"mismatched", len(report.Mismatched),
		"missing", len(report.Missing),
		"changed", len(report.Changed),
	)
	if !report.OK() {
		return fmt.Errorf("%d of %d records did not reproduce", report.Checked-report.Matched, report.Checked)
	}
	return nil
}
