// Package cmd - bootstrap command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/internal/config"
	"github.com/meenmo/curvelib/internal/logging"
	"github.com/meenmo/curvelib/store"
)

var (
	quotesFile   string
	discountID   string
	forwardSpecs []string
	quoteDate    string
	interpFlag   string
	parallel     bool
	saveSnapshot bool
	snapshotID   string
	jsonOutput   bool
)

// bootstrapCmd represents the bootstrap command
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Bootstrap a curve set from par quote strips",
	Long: `Bootstrap a discount curve and optional tenor forward curves from
market quotes, then print the resulting pillar tables.

Quotes come from the configured market data backend, or from a JSON file
given with --quotes. Forward strips are named as TENOR=CURVE_ID.

Examples:
  curvectl bootstrap --quotes quotes.json --discount usd-ois
  curvectl bootstrap --quotes quotes.json --discount usd-ois --forward 3M=usd-3m --forward 6M=usd-6m
  curvectl bootstrap --quotes quotes.json --discount usd-ois --interp monotonic-cubic --save`,
	RunE: runBootstrap,
}

func init() {
	bootstrapCmd.Flags().StringVarP(&quotesFile, "quotes", "q", "", "JSON quotes file (overrides the configured source)")
	bootstrapCmd.Flags().StringVarP(&discountID, "discount", "d", "discount", "curve ID of the discount strip")
	bootstrapCmd.Flags().StringArrayVarP(&forwardSpecs, "forward", "f", nil, "forward curve as TENOR=CURVE_ID (repeatable)")
	bootstrapCmd.Flags().StringVar(&quoteDate, "date", "", "quote date as YYYY-MM-DD (default today)")
	bootstrapCmd.Flags().StringVar(&interpFlag, "interp", "", "interpolation method override")
	bootstrapCmd.Flags().BoolVar(&parallel, "parallel", false, "build forward curves concurrently")
	bootstrapCmd.Flags().BoolVar(&saveSnapshot, "save", false, "save the curve set to the configured store")
	bootstrapCmd.Flags().StringVar(&snapshotID, "id", "", "snapshot ID (default DISCOUNT_ID-DATE)")
	bootstrapCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the curve set as JSON")
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	appCfg := config.Get()
	start := time.Now()

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if quoteDate != "" {
		parsed, err := time.Parse("2006-01-02", quoteDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		asOf = parsed
	}

	solverCfg, err := appCfg.Solver.BootstrapConfig()
	if err != nil {
		return err
	}
	if interpFlag != "" {
		method, err := curve.ParseInterpolation(interpFlag)
		if err != nil {
			return err
		}
		solverCfg.Interpolation = method
	}

	src, err := newSource(appCfg, quotesFile)
	if err != nil {
		return err
	}
	defer src.Close()

	discount, err := fetchStrip(ctx, src, discountID, asOf)
	if err != nil {
		return err
	}
	tenors := make([]bootstrap.TenorInstruments, 0, len(forwardSpecs))
	for _, spec := range forwardSpecs {
		tenor, curveID, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("invalid --forward %q, want TENOR=CURVE_ID", spec)
		}
		insts, err := fetchStrip(ctx, src, curveID, asOf)
		if err != nil {
			return err
		}
		tenors = append(tenors, bootstrap.TenorInstruments{
			Tenor:       curve.Tenor(strings.ToUpper(strings.TrimSpace(tenor))),
			Instruments: insts,
		})
	}

	builder := bootstrap.NewBuilder(solverCfg, appCfg.Solver.MaxWorkers)
	build := builder.Build
	if parallel {
		build = builder.BuildParallel
	}
	cs, err := build(discount, tenors)
	if err != nil {
		return err
	}
	logging.Info("curve set built",
		zap.String("discount", discountID),
		zap.Int("forwards", len(tenors)),
		zap.Duration("elapsed", time.Since(start)))

	id := snapshotID
	if id == "" {
		id = fmt.Sprintf("%s-%s", discountID, asOf.Format("2006-01-02"))
	}
	snap, err := store.SnapshotCurveSet(id, asOf, cs)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printCurve(fmt.Sprintf("discount (%s)", discountID), cs.Discount)
		for _, tenor := range cs.Tenors() {
			fmt.Println()
			printCurve(fmt.Sprintf("forward %s", tenor), cs.ForwardCurve(tenor))
		}
		fmt.Printf("\nBuilt %d curve(s) in %s\n", 1+len(cs.Tenors()), time.Since(start).Round(time.Microsecond))
	}

	if saveSnapshot {
		st, err := newStore(appCfg)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Save(ctx, snap); err != nil {
			return err
		}
		if appCfg.Store.Backend == "" || appCfg.Store.Backend == "memory" {
			logging.Warn("snapshot saved to the in-memory store, it will not outlive this process")
		}
		fmt.Printf("Saved snapshot %s\n", id)
	}
	return nil
}
