package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"gospc/adapters/coercer"
	"gospc/adapters/excel"
	"gospc/domain/ingestion"
	"gospc/domain/spc"
	"gospc/internal/report"
	"gospc/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "capability",
		Short: "One-shot process capability analysis from a workbook column",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newSheetsCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var sheet string
	var usl, lsl, target float64
	var statPrecision, indexPrecision int

	cmd := &cobra.Command{
		Use:   "analyze [file] [column]",
		Short: "Compute capability statistics for one column",
		Long: `Read a workbook or CSV, coerce one column to numbers and print the
capability summary.

Example: capability analyze line_a.xlsx measurement --usl 12 --lsl 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := spc.NoSpecLimits()
			if cmd.Flags().Changed("usl") {
				specs.USL = spc.Some(usl)
			}
			if cmd.Flags().Changed("lsl") {
				specs.LSL = spc.Some(lsl)
			}
			if cmd.Flags().Changed("target") {
				specs.Target = spc.Some(target)
			}
			return runAnalyze(args[0], sheet, args[1], specs, statPrecision, indexPrecision)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet name, empty selects the first sheet")
	cmd.Flags().Float64Var(&usl, "usl", 0, "Upper specification limit")
	cmd.Flags().Float64Var(&lsl, "lsl", 0, "Lower specification limit")
	cmd.Flags().Float64Var(&target, "target", 0, "Specification target")
	cmd.Flags().IntVar(&statPrecision, "stat-precision", 4, "Decimal places for statistics")
	cmd.Flags().IntVar(&indexPrecision, "index-precision", 2, "Decimal places for capability indices")

	return cmd
}

func runAnalyze(file, sheet, column string, specs spc.SpecLimits, statPrecision, indexPrecision int) error {
	table, err := excel.NewDataReader(file).ReadTable(sheet)
	if err != nil {
		return err
	}
	if !table.HasColumn(column) {
		return fmt.Errorf("column %q not found; available: %v", column, table.Headers)
	}

	c := coercer.NewNumberCoercer(coercer.DefaultCoercionConfig())
	var values []float64
	excludedCount := 0
	for _, raw := range table.Column(column) {
		if n, ok := c.CoerceNumber(raw).Float64(); ok {
			values = append(values, n)
		} else {
			excludedCount++
		}
	}

	result := spc.ComputeStatistics(values, specs)
	view := report.NewSummaryView(result, statPrecision, indexPrecision)

	fmt.Printf("Source: %s (sheet %s), column %s\n", file, table.Sheet, column)
	fmt.Printf("n: %d (excluded %d non-numeric cells)\n\n", view.N, excludedCount)
	fmt.Printf("Mean:            %s\n", view.Mean)
	fmt.Printf("Stdev (overall): %s\n", view.StdevOverall)
	fmt.Printf("Stdev (within):  %s\n", view.StdevWithin)
	fmt.Printf("Stdev (between): %s\n", view.StdevBetween)
	fmt.Printf("UCL:             %s\n", view.UCL)
	fmt.Printf("LCL:             %s\n\n", view.LCL)
	fmt.Printf("Ca:  %s\n", view.Ca)
	fmt.Printf("Cp:  %s\n", view.Cp)
	fmt.Printf("Cpk: %s\n", view.Cpk)
	fmt.Printf("Ppk: %s\n", view.Ppk)

	if cpk, ok := result.Cpk.Float64(); ok {
		fmt.Printf("\nProcess is %s.\n", report.Verdict(cpk))
	}
	return nil
}

func newSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets [file]",
		Short: "List the worksheets in a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets, err := excel.NewDataReader(args[0]).ListSheets()
			if err != nil {
				return err
			}
			for _, s := range sheets {
				fmt.Printf("%d: %s (%d rows)\n", s.Index, s.Name, s.RowCount)
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var count int
	var mean, stdev, shift float64
	var shiftAt int
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Write a synthetic measurement workbook for demos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := testkit.ProcessConfig{
				Mean:       mean,
				Stdev:      stdev,
				Count:      count,
				Categories: 2,
				Seed:       seed,
			}
			g := testkit.NewProcessGenerator(cfg)
			var values []float64
			if cmd.Flags().Changed("shift") {
				values = g.ShiftedSeries(shiftAt, shift)
			} else {
				values = g.InControlSeries()
			}
			return writeWorkbook(args[0], g.Table(args[0], values))
		},
	}

	cmd.Flags().IntVar(&count, "count", 200, "Number of observations")
	cmd.Flags().Float64Var(&mean, "mean", 10.0, "Process center")
	cmd.Flags().Float64Var(&stdev, "stdev", 0.5, "Process sigma")
	cmd.Flags().Float64Var(&shift, "shift", 0, "Mean shift magnitude")
	cmd.Flags().IntVar(&shiftAt, "shift-at", 100, "Observation index where the shift starts")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")

	return cmd
}

func writeWorkbook(path string, table *ingestion.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	measurements := table.Column("measurement")
	lines := table.Column("line")

	if err := f.SetSheetRow("Sheet1", "A1", &[]string{"measurement", "line"}); err != nil {
		return err
	}
	for i := range measurements {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow("Sheet1", cell, &[]string{measurements[i], lines[i]}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %d observations to %s\n", len(measurements), path)
	return nil
}
