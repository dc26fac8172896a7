package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qom/internal/compiler"
)

// LoadMode controls how errors are handled during operand loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading operands from a directory.
type LoadResult struct {
	Definitions *compiler.Definitions
	CUEValue    cue.Value // The raw CUE value for additional processing
	FileCount   int       // Number of CUE files found
}

// LoadError represents an error that occurred during operand loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadOperands loads and compiles the CUE operand package in dir.
// A nil LoadResult means the directory itself could not be loaded; the
// single error says why. Otherwise the errors are per definition.
func LoadOperands(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("operands directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing operands directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	value, err := compiler.BuildDir(dir)
	if err != nil {
		var buildErr *compiler.BuildError
		if errors.As(err, &buildErr) && buildErr.Stage == compiler.StageBuild {
			return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", buildErr.Err)}}
		}
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	var errs []error
	if mode == LoadModeFailFast {
		defs, err := compiler.Compile(value)
		if err != nil {
			return result, []error{convertCompileError(err)}
		}
		result.Definitions = defs
	} else {
		defs, compileErrs := compiler.CompileAll(value)
		for _, err := range compileErrs {
			errs = append(errs, convertCompileError(err))
		}
		if defs == nil {
			defs = &compiler.Definitions{}
		}
		result.Definitions = defs
	}

	if result.Definitions != nil && result.Definitions.Len() == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no operands, constraints or orders found in " + dir})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeFixture     = "E008" // Fixture unreadable or invalid
	ErrCodeStore       = "E009" // Store could not be opened or written

	// Operand definition errors
	ErrCodeOperandVariant  = "E101" // Missing or conflicting operand variant
	ErrCodeOperandArgument = "E102" // Missing or invalid operand argument
	ErrCodeOperator        = "E103" // Unknown comparison operator
	ErrCodeLiteral         = "E104" // Invalid comparison literal
	ErrCodeOrdering        = "E105" // Invalid ordering list

	// Evaluation errors
	ErrCodeEvaluation = "E201" // ValueSource or selector failure
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "operand":
		return ErrCodeOperandVariant
	case "property", "length", "name", "selector", "lower", "upper", "description":
		return ErrCodeOperandArgument
	case "op":
		return ErrCodeOperator
	case "value", "type", "constraint":
		return ErrCodeLiteral
	case "order", "descending":
		return ErrCodeOrdering
	default:
		return ErrCodeGeneric
	}
}
