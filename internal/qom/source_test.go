package qom

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/qom/internal/ir"
)

// fakeSource is a map-backed ValueSource for tests.
type fakeSource struct {
	props map[uuid.UUID]map[string]ir.Property
	fail  map[uuid.UUID]error
	reads atomic.Int64
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		props: map[uuid.UUID]map[string]ir.Property{},
		fail:  map[uuid.UUID]error{},
	}
}

func (s *fakeSource) add(id uuid.UUID, props ...ir.Property) {
	m := s.props[id]
	if m == nil {
		m = map[string]ir.Property{}
		s.props[id] = m
	}
	for _, p := range props {
		m[p.Name] = p
	}
}

func (s *fakeSource) GetValue(_ context.Context, node ir.NodeRef, property string) (Result, error) {
	s.reads.Add(1)
	if err, ok := s.fail[node.ID]; ok {
		return nil, err
	}
	p, ok := s.props[node.ID][property]
	if !ok {
		return Null{}, nil
	}
	if p.Multiple {
		return NewVector(p.Values...), nil
	}
	return Scalar{Value: p.Values[0]}, nil
}

func (s *fakeSource) LengthOf(v ir.Value) int64 {
	return ir.Length(v)
}

func single(name string, v ir.Value) ir.Property {
	return ir.Property{Name: name, Type: v.Type(), Values: []ir.Value{v}}
}

func multi(name string, t ir.PropertyType, values ...ir.Value) ir.Property {
	return ir.Property{Name: name, Type: t, Multiple: true, Values: values}
}

func mustPV(selector, property string) *PropertyValue {
	pv, err := NewPropertyValue(selector, property)
	if err != nil {
		panic(err)
	}
	return pv
}

func mustLength(pv *PropertyValue) *Length {
	l, err := NewLength(pv)
	if err != nil {
		panic(err)
	}
	return l
}
