package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qom/internal/ir"
)

// RunWithGolden executes a scenario and compares its report against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the report doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result.Report); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the canonical JSON form of report against the
// golden file named name.
func AssertGolden(t *testing.T, name string, report *Report) error {
	t.Helper()

	data, err := ir.MarshalCanonical(report.Canonical())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
