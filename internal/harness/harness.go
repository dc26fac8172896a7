package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/qom/internal/backend"
	"github.com/roach88/qom/internal/compiler"
	"github.com/roach88/qom/internal/repository"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the CUE operand package
//  2. Load the fixture into a fresh in-memory store of the scenario's kind
//  3. Read the nodes back and bind each to the scenario selector
//  4. Build the report and check the assertions
//
// Errors loading or evaluating are returned as errors; failed assertions
// are reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext is Run with a context and a logger for store events.
// A nil logger discards everything.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	defs, err := compiler.LoadDir(scenario.Operands)
	if err != nil {
		return nil, fmt.Errorf("failed to load operands: %w", err)
	}

	fixture, err := repository.LoadFixture(scenario.Fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}

	kind, err := backend.ParseKind(scenario.Store)
	if err != nil {
		return nil, err
	}
	repo, err := backend.Open(kind, "", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", kind, err)
	}
	defer repo.Close()

	if err := fixture.Load(ctx, repo); err != nil {
		return nil, fmt.Errorf("failed to load fixture into store: %w", err)
	}

	// Rows come from the store so the scenario exercises its round trip.
	nodes, err := repo.Nodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}
	rows := repository.RowsFor(nodes, fixture.Scores, scenario.Selector)

	report, err := BuildReport(ctx, defs, repo, rows, scenario.Selector)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate: %w", err)
	}

	logger.Info("scenario evaluated",
		"scenario", scenario.Name,
		"store", kind,
		"rows", len(report.Rows),
		"operands", len(defs.Operands),
	)

	result := NewResult(report)
	for _, msg := range EvaluateAssertions(report, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
