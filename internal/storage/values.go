package storage

import (
	"encoding/json"
	"math"
)

// Value is a float64 that encodes NaN and ±Inf as JSON null and decodes
// null as NaN.
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// Values is a column of samples with the encoding of Value.
type Values []float64

func (vs Values) MarshalJSON() ([]byte, error) {
	if vs == nil {
		return []byte("null"), nil
	}
	out := make([]Value, len(vs))
	for i, f := range vs {
		out[i] = Value(f)
	}
	return json.Marshal(out)
}

func (vs *Values) UnmarshalJSON(b []byte) error {
	var in []Value
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in == nil {
		*vs = nil
		return nil
	}
	out := make(Values, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	*vs = out
	return nil
}

// Scalars holds named run summaries with the encoding of Value.
type Scalars map[string]float64

func (s Scalars) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	out := make(map[string]Value, len(s))
	for k, f := range s {
		out[k] = Value(f)
	}
	return json.Marshal(out)
}

func (s *Scalars) UnmarshalJSON(b []byte) error {
	var in map[string]Value
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if in == nil {
		*s = nil
		return nil
	}
	out := make(Scalars, len(in))
	for k, v := range in {
		out[k] = float64(v)
	}
	*s = out
	return nil
}
