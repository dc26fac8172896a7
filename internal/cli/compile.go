package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/qom/internal/compiler"
	"github.com/roach88/qom/internal/qom"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledOperand is one operand in wire form with its fingerprint.
type CompiledOperand struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Expr        string          `json:"expr"`
	Fingerprint string          `json:"fingerprint"`
	Operand     json.RawMessage `json:"operand"`
}

// CompiledConstraint is one named comparison.
type CompiledConstraint struct {
	Name string `json:"name"`
	Expr string `json:"expr"`
}

// CompiledOrder is one named ordering list.
type CompiledOrder struct {
	Name  string   `json:"name"`
	Exprs []string `json:"exprs"`
}

// CompilationResult holds every compiled definition.
type CompilationResult struct {
	Operands    []CompiledOperand    `json:"operands"`
	Constraints []CompiledConstraint `json:"constraints"`
	Orders      []CompiledOrder      `json:"orders"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <operands-dir>",
		Short: "Compile CUE operand definitions to their wire form",
		Long: `Compile CUE operand, constraint and order definitions.

Each operand is emitted in its JSON wire form together with a content
fingerprint; two operands have the same fingerprint exactly when they
are the same tree.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, operandsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadOperands(operandsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, operandsDir)

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result, err := buildCompilationResult(loadResult.Definitions)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error())
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	return outputCompileSuccess(formatter, result)
}

func buildCompilationResult(defs *compiler.Definitions) (*CompilationResult, error) {
	result := &CompilationResult{
		Operands:    make([]CompiledOperand, 0, len(defs.Operands)),
		Constraints: make([]CompiledConstraint, 0, len(defs.Constraints)),
		Orders:      make([]CompiledOrder, 0, len(defs.Orderings)),
	}

	for _, named := range defs.Operands {
		wire, err := qom.MarshalOperand(named.Operand)
		if err != nil {
			return nil, fmt.Errorf("operand %s: %w", named.Name, err)
		}
		fp, err := qom.Fingerprint(named.Operand)
		if err != nil {
			return nil, fmt.Errorf("operand %s: %w", named.Name, err)
		}
		result.Operands = append(result.Operands, CompiledOperand{
			Name:        named.Name,
			Description: named.Description,
			Expr:        named.Operand.String(),
			Fingerprint: fp,
			Operand:     wire,
		})
	}

	for _, named := range defs.Constraints {
		result.Constraints = append(result.Constraints, CompiledConstraint{
			Name: named.Name,
			Expr: named.Comparison.String(),
		})
	}

	for _, named := range defs.Orderings {
		exprs := make([]string, len(named.Orderings))
		for i, o := range named.Orderings {
			exprs[i] = o.String()
		}
		result.Orders = append(result.Orders, CompiledOrder{Name: named.Name, Exprs: exprs})
	}

	return result, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.OK("Compiled %d operand(s), %d constraint(s), %d order(s)",
		len(result.Operands), len(result.Constraints), len(result.Orders))
	fmt.Fprintln(formatter.Writer)

	if len(result.Operands) > 0 {
		fmt.Fprintln(formatter.Writer, "Operands:")
		for _, op := range result.Operands {
			fmt.Fprintf(formatter.Writer, "  %s: %s %s\n", op.Name, op.Expr, dimText(op.Fingerprint[:12]))
		}
	}
	if len(result.Constraints) > 0 {
		fmt.Fprintln(formatter.Writer, "Constraints:")
		for _, c := range result.Constraints {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", c.Name, c.Expr)
		}
	}
	if len(result.Orders) > 0 {
		fmt.Fprintln(formatter.Writer, "Orders:")
		for _, o := range result.Orders {
			fmt.Fprintf(formatter.Writer, "  %s: %v\n", o.Name, o.Exprs)
		}
	}
	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs every per-definition compilation error.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrs := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrs[i] = CLIError{Code: code, Message: message}
		}
		_ = formatter.Error(cliErrs[0].Code, cliErrs[0].Message, cliErrs)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	formatter.Fail("Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the compilation result as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
