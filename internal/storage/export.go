package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/miegruneisen/internal/analysis"
	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/sweep"
)

type ExportData struct {
	Method   string        `json:"method"`
	Params   model.Params  `json:"params"`
	Samples  int           `json:"samples"`
	Terms    int64         `json:"terms"`
	Volumes  Values        `json:"volumes"`
	Strains  Values        `json:"strains"`
	Z        Values        `json:"Z"`
	E        Values        `json:"E"`
	F        Values        `json:"F"`
	Hugoniot *HugoniotData `json:"hugoniot,omitempty"`
}

type HugoniotData struct {
	Pressure    Values `json:"pressure"`
	BulkModulus Values `json:"bulk_modulus"`
	Numeric     Values `json:"numeric"`
	Analytic    Values `json:"analytic"`
}

// ExportJSON writes res, and curves when non-nil, as indented JSON.
// Non-finite samples are written as null.
func ExportJSON(w io.Writer, res *sweep.Result, curves *analysis.Curves) error {
	data := ExportData{
		Method:  res.Method,
		Params:  res.Params,
		Samples: res.Len(),
		Terms:   res.Terms,
		Volumes: res.Volumes,
		Strains: res.Strains,
		Z:       res.Z,
		E:       res.E,
		F:       res.F,
	}
	if curves != nil {
		data.Hugoniot = &HugoniotData{
			Pressure:    curves.Pressure,
			BulkModulus: curves.BulkModulus,
			Numeric:     curves.Hugoniot,
			Analytic:    curves.HugoniotAnalytic,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
