// Package harness runs operand scenarios end to end and checks the result.
//
// A scenario names a directory of CUE operand definitions, a YAML fixture
// of repository content, and the store to evaluate against. Run compiles
// the operands, loads the fixture into a fresh store, evaluates every
// operand on every fixture node, applies the declared constraints and
// orderings, and then checks the scenario's assertions against the
// resulting Report.
//
// # Scenario format
//
//	name: article_lengths
//	description: "Length counts code points"
//	operands: operands          # relative to the scenario file
//	fixture: nodes.yaml         # relative to the scenario file
//	selector: s
//	store: sqlite               # memory (default), sqlite or badger
//	assertions:
//	  - type: result
//	    operand: titleLength
//	    path: /content/jcr:article
//	    kind: scalar
//	    values: ["5"]
//	  - type: matches
//	    constraint: shortTitle
//	    paths: [/content/jcr:article]
//	  - type: order
//	    order: byTitle
//	    paths: [/content/b, /content/a]
//
// # Golden files
//
// RunWithGolden compares the canonical JSON form of the Report with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
//
// Every store is opened in memory, so scenarios leave nothing behind.
package harness
