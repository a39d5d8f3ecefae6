// Package cmd - sens command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/internal/config"
)

var (
	sensQuotesFile string
	sensCurveID    string
	sensDate       string
	sensTolerance  float64
	showMatrix     bool
	sensJSON       bool
)

// sensCmd represents the sens command
var sensCmd = &cobra.Command{
	Use:   "sens",
	Short: "Verify curve sensitivities against bump-and-revalue",
	Long: `Bootstrap one curve, compute its analytic rate sensitivities and
check them against finite-difference bump-and-revalue figures.

The command fails when any matrix entry differs by more than the
tolerance in both absolute and relative terms.

Examples:
  curvectl sens --quotes quotes.json --curve usd-ois
  curvectl sens --quotes quotes.json --curve usd-ois --tolerance 0.05 --matrix`,
	RunE: runSens,
}

func init() {
	sensCmd.Flags().StringVarP(&sensQuotesFile, "quotes", "q", "", "JSON quotes file (overrides the configured source)")
	sensCmd.Flags().StringVarP(&sensCurveID, "curve", "c", "discount", "curve ID of the strip to verify")
	sensCmd.Flags().StringVar(&sensDate, "date", "", "quote date as YYYY-MM-DD (default today)")
	sensCmd.Flags().Float64VarP(&sensTolerance, "tolerance", "t", 0.01, "verification tolerance")
	sensCmd.Flags().BoolVar(&showMatrix, "matrix", false, "print the analytic sensitivity matrix")
	sensCmd.Flags().BoolVar(&sensJSON, "json", false, "print the report as JSON")
}

func runSens(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	appCfg := config.Get()

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if sensDate != "" {
		parsed, err := time.Parse("2006-01-02", sensDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		asOf = parsed
	}

	solverCfg, err := appCfg.Solver.BootstrapConfig()
	if err != nil {
		return err
	}
	src, err := newSource(appCfg, sensQuotesFile)
	if err != nil {
		return err
	}
	defer src.Close()

	insts, err := fetchStrip(ctx, src, sensCurveID, asOf)
	if err != nil {
		return err
	}
	res, err := bootstrap.Run(insts, solverCfg)
	if err != nil {
		return err
	}
	report, err := res.VerifySensitivities(sensTolerance)
	if err != nil {
		return err
	}

	if sensJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("Curve %s: %d pillars\n", sensCurveID, res.Curve.PillarCount())
		fmt.Printf("  Entries compared: %d\n", report.Entries)
		fmt.Printf("  Max abs diff:     %.3e\n", report.MaxAbsDiff)
		fmt.Printf("  Max rel diff:     %.3e\n", report.MaxRelDiff)
		if report.Entries > 0 {
			fmt.Printf("  Worst entry:      dDF[%d]/dRate[%d]\n", report.WorstPillar, report.WorstInput)
		}
		if report.WithinTolerance {
			fmt.Printf("  PASS (tolerance %.3g)\n", report.Tolerance)
		} else {
			fmt.Printf("  FAIL (tolerance %.3g)\n", report.Tolerance)
		}
	}

	if showMatrix {
		m, err := res.Sensitivities()
		if err != nil {
			return err
		}
		fmt.Println("\nAnalytic dDF/dRate:")
		for i := range m.Values {
			fmt.Printf("  %6.2fy:", m.Maturities[i])
			for _, v := range m.Values[i] {
				fmt.Printf(" %12.5e", v)
			}
			fmt.Println()
		}
	}

	if !report.WithinTolerance {
		return fmt.Errorf("sensitivity verification failed: max rel diff %.3e exceeds tolerance %.3g", report.MaxRelDiff, report.Tolerance)
	}
	return nil
}
