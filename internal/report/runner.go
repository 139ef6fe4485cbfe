// Package report runs the hypothesis tests over one dataset and renders the
// ranked tables for people (text, markdown, HTML) and spreadsheets (XLSX).
package report

import (
	"context"
	"fmt"
	"time"

	"churnstats/adapters/stats/hypothesis"
	"churnstats/domain/core"
	"churnstats/domain/dataset"
	"churnstats/domain/stats"

	"golang.org/x/sync/errgroup"
)

// Report is the outcome of running one or more tests against a dataset
type Report struct {
	ID          core.ReportID
	Source      string
	DataHash    core.DatasetHash
	Target      string
	GeneratedAt time.Time
	Tables      []*stats.ResultTable
}

// Request describes which tests to run on which data
type Request struct {
	Source          string
	DataHash        core.DatasetHash
	TargetName      string
	Table           *dataset.Table
	Target          *dataset.Target
	CategoricalCols []string
	Options         hypothesis.Options
	Tests           []stats.TestType
}

// ApplicableTests picks the tests whose preconditions the data meets: ANOVA
// needs numeric features and two target classes, the t-test additionally a
// 0/1 target, and chi-square a categorical column list.
func ApplicableTests(table *dataset.Table, target *dataset.Target, categoricalCols []string) []stats.TestType {
	var tests []stats.TestType

	levels := target.Levels()
	if len(table.NumericColumns()) > 0 && len(levels) >= 2 {
		tests = append(tests, stats.TestANOVA)
	}
	if len(categoricalCols) > 0 {
		tests = append(tests, stats.TestChiSquare)
	}
	if len(table.NumericColumns()) > 0 && isBinary(levels) {
		tests = append(tests, stats.TestTTest)
	}

	return tests
}

func isBinary(levels []string) bool {
	for _, l := range levels {
		if l != "0" && l != "1" {
			return false
		}
	}
	return len(levels) > 0
}

// Run executes every requested test concurrently. The tests share the input
// read-only. Tables come back in request order.
func Run(ctx context.Context, req Request) (*Report, error) {
	if len(req.Tests) == 0 {
		return nil, core.NewInvalidInputError("tests", "nothing to run")
	}

	tables := make([]*stats.ResultTable, len(req.Tests))
	g, ctx := errgroup.WithContext(ctx)

	for i, test := range req.Tests {
		i, test := i, test
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			table, err := runOne(test, req)
			if err != nil {
				return fmt.Errorf("%s: %w", test, err)
			}
			tables[i] = table
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		ID:          core.NewReportID(),
		Source:      req.Source,
		DataHash:    req.DataHash,
		Target:      req.TargetName,
		GeneratedAt: time.Now().UTC(),
		Tables:      tables,
	}, nil
}

func runOne(test stats.TestType, req Request) (*stats.ResultTable, error) {
	switch test {
	case stats.TestANOVA:
		return hypothesis.ANOVA(req.Table, req.Target, req.Options)
	case stats.TestChiSquare:
		return hypothesis.ChiSquare(req.Table, req.Target, req.CategoricalCols, req.Options)
	case stats.TestTTest:
		return hypothesis.TTest(req.Table, req.Target, req.Options)
	default:
		return nil, core.NewInvalidInputError("test", string(test)+" is not supported")
	}
}
