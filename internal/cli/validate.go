package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/qom/internal/compiler"
	"github.com/roach88/qom/internal/qom"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Selectors []string // selector names operands may refer to; empty allows any
}

// ValidationIssue is one problem found by validate.
type ValidationIssue struct {
	Definition string `json:"definition,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Line       int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Operands    int               `json:"operands"`
	Constraints int               `json:"constraints"`
	Orders      int               `json:"orders"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
}

// Validation error codes beyond the loader's.
const (
	ErrCodeStructure = "E106" // Operand tree is structurally invalid
	ErrCodeSelector  = "E107" // Operand refers to an undeclared selector
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <operands-dir>",
		Short: "Validate operand definitions without evaluating them",
		Long: `Validate CUE operand, constraint and order definitions.

Every definition is compiled, every operand tree is checked for
structural problems, and with --selectors every selector reference is
checked against the declared selector names. All problems are reported,
not just the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Selectors, "selectors", nil, "selector names operands may refer to")

	return cmd
}

func runValidate(opts *ValidateOptions, operandsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadOperands(operandsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, operandsDir)

	var issues []ValidationIssue
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			issues = append(issues, ValidationIssue{
				Code:    loadErr.Code,
				Message: loadErr.Message,
				Line:    lineOf(loadErr),
			})
		}
	}

	defs := loadResult.Definitions
	issues = append(issues, validateDefinitions(defs, opts.Selectors, formatter)...)

	result := ValidationResult{
		Valid:       len(issues) == 0,
		Operands:    len(defs.Operands),
		Constraints: len(defs.Constraints),
		Orders:      len(defs.Orderings),
		Errors:      issues,
	}

	if len(issues) > 0 {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// validateDefinitions checks every operand tree, including those inside
// constraints and orderings.
func validateDefinitions(defs *compiler.Definitions, selectors []string, formatter *OutputFormatter) []ValidationIssue {
	var issues []ValidationIssue

	check := func(name string, op qom.DynamicOperand) {
		formatter.VerboseLog("Validating %s: %s", name, op)

		res := qom.Validate(op)
		for _, p := range res.Problems {
			issues = append(issues, ValidationIssue{Definition: name, Code: ErrCodeStructure, Message: p})
		}
		if len(selectors) == 0 || !res.Valid {
			return
		}
		for _, sel := range qom.SelectorNames(op) {
			if sel != "" && !slices.Contains(selectors, sel) {
				issues = append(issues, ValidationIssue{
					Definition: name,
					Code:       ErrCodeSelector,
					Message:    fmt.Sprintf("selector %q is not one of %v", sel, selectors),
				})
			}
		}
	}

	for _, named := range defs.Operands {
		check("operand."+named.Name, named.Operand)
	}
	for _, named := range defs.Constraints {
		check("constraint."+named.Name, named.Comparison.Operand())
	}
	for _, named := range defs.Orderings {
		for i, o := range named.Orderings {
			check(fmt.Sprintf("order.%s[%d]", named.Name, i), o.Operand)
		}
	}
	return issues
}

// lineOf extracts the line number of a load error, 0 if unknown.
func lineOf(err *LoadError) int {
	if err.Pos.IsValid() {
		return err.Pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.OK("All operands valid (%d operand(s), %d constraint(s), %d order(s))",
		result.Operands, result.Constraints, result.Orders)
	return nil
}

// outputValidateError outputs a single load error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every validation issue.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := formatter.JSON(response); err != nil {
			return err
		}
		// Validation failures = exit code 1 (validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	formatter.Fail("Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range errs {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		if issue.Definition != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Definition, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}

	// Validation failures = exit code 1 (validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
