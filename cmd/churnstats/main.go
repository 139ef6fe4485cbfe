// Command churnstats ranks the features of a churn dataset with ANOVA,
// chi-square and t-tests and prints the tables.
package main

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"churnstats/adapters/datareadiness/coercer"
	"churnstats/adapters/stats/hypothesis"
	"churnstats/adapters/tabular"
	"churnstats/domain/core"
	"churnstats/domain/dataset"
	"churnstats/domain/stats"
	"churnstats/internal"
	"churnstats/internal/config"
	"churnstats/internal/errors"
	"churnstats/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("No .env file found, using system environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commonFlags are shared by every subcommand
type commonFlags struct {
	data      string
	sheet     string
	target    string
	threshold float64
	format    string
	xlsx      string
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "churnstats",
		Short:         "Hypothesis tests for feature selection on churn data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newTestCmd(stats.TestANOVA, "anova", "Rank numeric features with a one-way ANOVA F-test"),
		newChiSquareCmd(),
		newTTestCmd(),
		newReportCmd(),
	)

	return rootCmd
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.data, "data", "data_processed.csv", "CSV or XLSX file to analyze")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet to read from an XLSX file (default first)")
	cmd.Flags().StringVar(&f.target, "target", "Churn", "Column holding the target label")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "Significance level (default from P_VALUE_THRESHOLD or 0.05)")
	cmd.Flags().StringVar(&f.format, "format", "text", "Output format: text, markdown or html")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "Also write the tables to this XLSX file")
}

func newTestCmd(test stats.TestType, use, short string) *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &flags, "", []stats.TestType{test}, nil)
		},
	}
	flags.register(cmd)
	return cmd
}

func newChiSquareCmd() *cobra.Command {
	var flags commonFlags
	var cols []string

	cmd := &cobra.Command{
		Use:   "chi2",
		Short: "Rank categorical features with a chi-square test of independence",
		Long: `Cross-tabulate each named column against the target and test for independence.

Example: churnstats chi2 --data data_processed.csv --cols gender,Contract,PaymentMethod`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &flags, "", []stats.TestType{stats.TestChiSquare}, cols)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&cols, "cols", nil, "Categorical columns to test (required)")
	_ = cmd.MarkFlagRequired("cols")
	return cmd
}

func newTTestCmd() *cobra.Command {
	var flags commonFlags
	var alternative string

	cmd := &cobra.Command{
		Use:   "ttest",
		Short: "Rank numeric features with an independent two-sample t-test on a 0/1 target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &flags, alternative, []stats.TestType{stats.TestTTest}, nil)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&alternative, "alternative", "", "two-sided, less or greater (default from T_TEST_ALTERNATIVE or two-sided)")
	return cmd
}

func newReportCmd() *cobra.Command {
	var flags commonFlags
	var categorical []string
	var alternative string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run every test the dataset supports and print all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &flags, alternative, nil, categorical)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringSliceVar(&categorical, "categorical", nil, "Columns for the chi-square test (default every categorical column)")
	cmd.Flags().StringVar(&alternative, "alternative", "", "t-test alternative: two-sided, less or greater")
	return cmd
}

// run loads the dataset, runs tests (every applicable one when tests is nil)
// and renders the result to the command's output
func run(cmd *cobra.Command, flags *commonFlags, alternative string, tests []stats.TestType, cols []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := internal.NewDefaultLogger()
	if level, ok := internal.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return errors.InvalidInput(err.Error())
	}

	opts := hypothesis.Options{Threshold: cfg.Stats.Threshold}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = flags.threshold
	}
	if alternative == "" {
		alternative = cfg.Stats.Alternative
	}
	if opts.Alternative, err = stats.ParseAlternative(alternative); err != nil {
		return errors.Classify(err)
	}

	table, target, hash, err := loadDataset(flags.data, flags.sheet, flags.target)
	if err != nil {
		return err
	}
	logger.Debug("Loaded %s: %d rows, %d feature columns", flags.data, table.Rows(), len(table.Columns()))

	if tests == nil {
		if len(cols) == 0 {
			for _, c := range table.CategoricalColumns() {
				cols = append(cols, c.Name)
			}
		}
		tests = report.ApplicableTests(table, target, cols)
		if len(tests) == 0 {
			return errors.InvalidInput("no test applies to this dataset")
		}
	}

	rep, err := report.Run(cmd.Context(), report.Request{
		Source:          flags.data,
		DataHash:        hash,
		TargetName:      flags.target,
		Table:           table,
		Target:          target,
		CategoricalCols: cols,
		Options:         opts,
		Tests:           tests,
	})
	if err != nil {
		return errors.Classify(err)
	}
	logger.Info("Report %s: ran %s", rep.ID, joinTests(tests))

	if err := report.Render(cmd.OutOrStdout(), rep, format); err != nil {
		return errors.IOError("stdout", err)
	}

	if flags.xlsx != "" {
		if err := report.WriteXLSX(flags.xlsx, rep); err != nil {
			return errors.IOError(flags.xlsx, err)
		}
		logger.Info("Wrote %s", flags.xlsx)
	}

	return nil
}

func loadDataset(path, sheet, targetName string) (*dataset.Table, *dataset.Target, core.DatasetHash, error) {
	reader := tabular.NewDataReader(path)
	if sheet != "" {
		reader = reader.WithSheet(sheet)
	}

	frame, err := reader.ReadData()
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil, "", errors.Wrapf(err, "failed to read %s", path)
		}
		return nil, nil, "", errors.ParseError(path, err)
	}

	table, err := tabular.ToTable(frame, coercer.NewTypeCoercer(coercer.DefaultCoercionConfig()))
	if err != nil {
		return nil, nil, "", errors.ParseError(path, err)
	}

	features, target, ok := tabular.SplitTarget(table, targetName)
	if !ok {
		return nil, nil, "", errors.Wrapf(core.NewColumnNotFoundError(targetName), "target column missing from %s", path)
	}
	return features, target, frame.Fingerprint(), nil
}

func joinTests(tests []stats.TestType) string {
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
