package kvstore

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/qom/internal/ir"
)

type nodeRecord struct {
	Path string `json:"path"`
}

// propertyRecord stores values in canonical string form so every type
// round-trips through ir.ParseValue.
type propertyRecord struct {
	Pos      int      `json:"pos"`
	Type     string   `json:"type"`
	Multiple bool     `json:"multiple"`
	Values   []string `json:"values"`
}

func encodeProperty(pos int, p ir.Property) ([]byte, error) {
	rec := propertyRecord{
		Pos:      pos,
		Type:     p.Type.String(),
		Multiple: p.Multiple,
		Values:   make([]string, len(p.Values)),
	}
	for i, v := range p.Values {
		rec.Values[i] = v.String()
	}
	return json.Marshal(rec)
}

func decodeProperty(name string, data []byte) (int, ir.Property, error) {
	var rec propertyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, ir.Property{}, fmt.Errorf("decode property %q: %w", name, err)
	}
	t, err := ir.ParsePropertyType(rec.Type)
	if err != nil {
		return 0, ir.Property{}, fmt.Errorf("decode property %q: %w", name, err)
	}

	p := ir.Property{Name: name, Type: t, Multiple: rec.Multiple, Values: make([]ir.Value, len(rec.Values))}
	for i, text := range rec.Values {
		v, err := ir.ParseValue(t, text)
		if err != nil {
			return 0, ir.Property{}, fmt.Errorf("decode property %q: %w", name, err)
		}
		p.Values[i] = v
	}
	return rec.Pos, p, nil
}
