package main

import (
	"fmt"
	"log"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/instrument"
	"github.com/meenmo/curvelib/pricing"
)

func main() {
	discount := []instrument.Instrument{
		instrument.NewOIS(0.25, 0.0532, instrument.FreqQuarterly),
		instrument.NewOIS(0.50, 0.0528, instrument.FreqQuarterly),
		instrument.NewOIS(1.00, 0.0511, instrument.FreqQuarterly),
		instrument.NewOIS(2.00, 0.0465, instrument.FreqAnnual),
		instrument.NewOIS(3.00, 0.0437, instrument.FreqAnnual),
		instrument.NewOIS(5.00, 0.0410, instrument.FreqAnnual),
		instrument.NewOIS(10.0, 0.0401, instrument.FreqAnnual),
	}
	forward3M := []instrument.Instrument{
		instrument.NewFRA(0.00, 0.25, 0.0539),
		instrument.NewFRA(0.25, 0.50, 0.0533),
		instrument.NewFuture(0.75, 94.85, 0.0002),
		instrument.NewFuture(1.00, 95.10, 0.0003),
		instrument.NewIRS(2.00, 0.0478, instrument.FreqSemiAnnual, instrument.FreqQuarterly),
		instrument.NewIRS(3.00, 0.0451, instrument.FreqSemiAnnual, instrument.FreqQuarterly),
		instrument.NewIRS(5.00, 0.0424, instrument.FreqSemiAnnual, instrument.FreqQuarterly),
		instrument.NewIRS(10.0, 0.0415, instrument.FreqSemiAnnual, instrument.FreqQuarterly),
	}

	builder := bootstrap.NewBuilder(bootstrap.DefaultConfig(), 0)
	cs, err := builder.Build(discount, []bootstrap.TenorInstruments{
		{Tenor: curve.Tenor3M, Instruments: forward3M},
	})
	if err != nil {
		log.Fatal(err)
	}

	printCurve("Discount (OIS)", cs.Discount)
	printCurve("Forward 3M", cs.Forwards[curve.Tenor3M])

	const (
		maturity = 5.0
		notional = 10000000.0
	)
	par, err := pricing.ParRate(cs, curve.Tenor3M, maturity, instrument.FreqSemiAnnual)
	if err != nil {
		log.Fatal(err)
	}
	pv, err := pricing.SwapPV(cs, 0.0450, curve.Tenor3M, maturity, instrument.FreqSemiAnnual, notional)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("5Y par swap rate: %.4f%%\n", par*100)
	fmt.Printf("5Y payer swap at 4.50%%, notional %.0f:\n", notional)
	fmt.Printf("  Fixed PV:    %.2f\n", pv.FixedLegPV)
	fmt.Printf("  Floating PV: %.2f\n", pv.FloatLegPV)
	fmt.Printf("  NPV:         %.2f\n", pv.NetPV)

	res, err := bootstrap.Run(discount, bootstrap.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	report, err := res.VerifySensitivities(0.01)
	if err != nil {
		log.Fatal(err)
	}
	status := "PASS"
	if !report.WithinTolerance {
		status = "FAIL"
	}
	fmt.Printf("\nSensitivity check (analytic vs bump): max |diff| %.3e, %s\n",
		report.MaxAbsDiff, status)
}

func printCurve(label string, c *curve.Curve) {
	fmt.Printf("%s\n", label)
	fmt.Printf("  %-8s %-14s %s\n", "T", "DF", "Zero")
	for _, t := range c.Times() {
		df, err := c.DiscountFactor(t)
		if err != nil {
			log.Fatal(err)
		}
		zero, err := c.ZeroRate(t)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %-8.2f %-14.10f %.4f%%\n", t, df, zero*100)
	}
	fmt.Println()
}
