package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Build stages reported by BuildError.
const (
	StageLoad  = "load"
	StageBuild = "build"
)

// BuildError reports a failure to turn a directory into a CUE value.
type BuildError struct {
	Stage string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s CUE files: %v", e.Stage, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// BuildDir loads the CUE package in dir and builds it into one value.
func BuildDir(dir string) (cue.Value, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, &BuildError{Stage: StageLoad, Err: fmt.Errorf("no CUE instances loaded")}
	}

	inst := instances[0]
	if inst.Err != nil {
		return cue.Value{}, &BuildError{Stage: StageLoad, Err: inst.Err}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cue.Value{}, &BuildError{Stage: StageBuild, Err: err}
	}
	// Err only reports a bottom root; conflicts inside fields need Validate.
	if err := value.Validate(); err != nil {
		return cue.Value{}, &BuildError{Stage: StageBuild, Err: err}
	}
	return value, nil
}

// LoadDir builds dir and compiles its definitions.
func LoadDir(dir string) (*Definitions, error) {
	value, err := BuildDir(dir)
	if err != nil {
		return nil, err
	}
	return Compile(value)
}
