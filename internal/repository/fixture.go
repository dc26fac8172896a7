package repository

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qom/internal/ir"
	"github.com/roach88/qom/internal/qom"
)

// Fixture is repository content loaded from YAML, plus the full-text
// scores candidates carry when rows are built from it.
type Fixture struct {
	Nodes  []ir.Node
	Scores map[uuid.UUID]float64
}

// fixtureFile is the YAML layout of a fixture:
//
//	nodes:
//	  - path: /content/jcr:article
//	    score: 0.75
//	    properties:
//	      - name: title
//	        value: Hello
//	      - name: tags
//	        type: Name
//	        values: [a, b]
type fixtureFile struct {
	Nodes []fixtureNode `yaml:"nodes"`
}

type fixtureNode struct {
	// ID is optional; a time-ordered UUID is assigned when empty.
	ID         string            `yaml:"id,omitempty"`
	Path       string            `yaml:"path"`
	Score      float64           `yaml:"score,omitempty"`
	Properties []fixtureProperty `yaml:"properties"`
}

type fixtureProperty struct {
	Name string `yaml:"name"`

	// Type defaults to String.
	Type string `yaml:"type,omitempty"`

	// Value is set for single-valued properties.
	Value *string `yaml:"value,omitempty"`

	// Values is set for multi-valued properties.
	Values []string `yaml:"values,omitempty"`

	// Multiple forces a multi-valued property, for an empty values list.
	Multiple bool `yaml:"multiple,omitempty"`
}

// LoadFixture reads and parses a fixture YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var file fixtureFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	fixture := &Fixture{Scores: make(map[uuid.UUID]float64, len(file.Nodes))}
	seen := make(map[string]bool, len(file.Nodes))
	for i, fn := range file.Nodes {
		node, err := fn.toNode()
		if err != nil {
			return nil, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		if seen[node.Path] {
			return nil, fmt.Errorf("nodes[%d]: duplicate path %q", i, node.Path)
		}
		seen[node.Path] = true
		fixture.Nodes = append(fixture.Nodes, node)
		fixture.Scores[node.ID] = fn.Score
	}
	return fixture, nil
}

func (fn fixtureNode) toNode() (ir.Node, error) {
	id := uuid.Nil
	if fn.ID != "" {
		parsed, err := uuid.Parse(fn.ID)
		if err != nil {
			return ir.Node{}, fmt.Errorf("invalid id %q: %w", fn.ID, err)
		}
		id = parsed
	} else {
		generated, err := uuid.NewV7()
		if err != nil {
			return ir.Node{}, fmt.Errorf("generate id: %w", err)
		}
		id = generated
	}

	node := ir.Node{ID: id, Path: fn.Path}
	for _, fp := range fn.Properties {
		p, err := fp.toProperty()
		if err != nil {
			return ir.Node{}, fmt.Errorf("node %q: %w", fn.Path, err)
		}
		node.Properties = append(node.Properties, p)
	}
	if err := node.Validate(); err != nil {
		return ir.Node{}, err
	}
	return node, nil
}

func (fp fixtureProperty) toProperty() (ir.Property, error) {
	t := ir.TypeString
	if fp.Type != "" {
		parsed, err := ir.ParsePropertyType(fp.Type)
		if err != nil {
			return ir.Property{}, fmt.Errorf("property %q: %w", fp.Name, err)
		}
		t = parsed
	}

	if fp.Value != nil && (len(fp.Values) > 0 || fp.Multiple) {
		return ir.Property{}, fmt.Errorf("property %q: value and values are mutually exclusive", fp.Name)
	}

	var texts []string
	multiple := fp.Multiple || len(fp.Values) > 0
	switch {
	case multiple:
		texts = fp.Values
	case fp.Value != nil:
		texts = []string{*fp.Value}
	default:
		return ir.Property{}, fmt.Errorf("property %q: value is required", fp.Name)
	}

	p := ir.Property{Name: fp.Name, Type: t, Multiple: multiple, Values: make([]ir.Value, 0, len(texts))}
	for _, text := range texts {
		v, err := ir.ParseValue(t, text)
		if err != nil {
			return ir.Property{}, fmt.Errorf("property %q: %w", fp.Name, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

// Load stores every fixture node in repo.
func (f *Fixture) Load(ctx context.Context, repo Repository) error {
	for _, n := range f.Nodes {
		if err := repo.PutNode(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Rows returns one single-selector row per fixture node, ordered by path.
// Each candidate carries the node's fixture score.
func (f *Fixture) Rows(selector string) []qom.Row {
	nodes := append([]ir.Node(nil), f.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return RowsFor(nodes, f.Scores, selector)
}

// RowsFor builds rows for nodes read back from a store. Scores come from
// the fixture when it knows the node and are zero otherwise.
func RowsFor(nodes []ir.Node, scores map[uuid.UUID]float64, selector string) []qom.Row {
	rows := make([]qom.Row, len(nodes))
	for i, n := range nodes {
		rows[i] = qom.Row{selector: {Node: n.Ref(), Score: scores[n.ID]}}
	}
	return rows
}
