package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/qom/internal/backend"
	"github.com/roach88/qom/internal/harness"
	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/repository"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Fixture  string // YAML fixture to load before evaluating
	Store    string // memory | sqlite | badger
	Database string // store path; empty keeps a durable store in memory
	Selector string // selector name rows bind nodes to
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <operands-dir>",
		Short: "Evaluate operands against repository content",
		Long: `Evaluate every operand on every node, then apply every constraint
and order.

Nodes come from --fixture, from a durable store given by --store and --db,
or both: the fixture is written into the store first.

Exit codes:
  0 - Evaluation succeeded
  1 - Evaluation failed (repository error, unbound selector)
  2 - Command error (invalid paths, unreadable fixture, etc.)

Examples:
  qom eval ./operands --fixture nodes.yaml
  qom eval ./operands --store sqlite --db ./repo.db
  qom eval ./operands --fixture nodes.yaml --store badger --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Fixture, "fixture", "", "YAML fixture of repository nodes")
	cmd.Flags().StringVar(&opts.Store, "store", string(backend.Memory), "repository store (memory|sqlite|badger)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store path for sqlite or badger")
	cmd.Flags().StringVar(&opts.Selector, "selector", harness.DefaultSelector, "selector name rows bind nodes to")

	return cmd
}

func runEval(opts *EvalOptions, operandsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	kind, err := backend.ParseKind(opts.Store)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error())
	}
	if opts.Fixture == "" && (kind == backend.Memory || opts.Database == "") {
		return commandError(formatter, ErrCodeGeneric, "--fixture is required unless --db names a sqlite or badger store")
	}

	loadResult, loadErrors := LoadOperands(operandsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return commandError(formatter, loadErr.Code, loadErr.Message)
		}
		return commandError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}
	defs := loadResult.Definitions
	formatter.VerboseLog("Loaded %d operand(s), %d constraint(s), %d order(s)",
		len(defs.Operands), len(defs.Constraints), len(defs.Orderings))

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var scores map[uuid.UUID]float64
	var fixture *repository.Fixture
	if opts.Fixture != "" {
		fixture, err = repository.LoadFixture(opts.Fixture)
		if err != nil {
			return commandError(formatter, ErrCodeFixture, err.Error())
		}
		scores = fixture.Scores
	}

	repo, err := backend.Open(kind, opts.Database, logger)
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("opening %s store: %v", kind, err))
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	if fixture != nil {
		if err := fixture.Load(ctx, repo); err != nil {
			return commandError(formatter, ErrCodeStore, fmt.Sprintf("loading fixture: %v", err))
		}
	}

	nodes, err := repo.Nodes(ctx)
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("reading nodes: %v", err))
	}
	rows := repository.RowsFor(nodes, scores, opts.Selector)
	logger.Info("evaluating", "store", kind, "nodes", len(nodes), "operands", len(defs.Operands))

	report, err := harness.BuildReport(ctx, defs, repo, rows, opts.Selector)
	if err != nil {
		_ = formatter.Error(ErrCodeEvaluation, err.Error(), nil)
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	if formatter.Format == "json" {
		data, err := ir.MarshalCanonical(report.Canonical())
		if err != nil {
			return WrapExitError(ExitFailure, "encoding report", err)
		}
		return formatter.Success(json.RawMessage(data))
	}

	renderReport(formatter.Writer, report)
	return nil
}

// commandError reports a command-level failure (exit code 2).
func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
