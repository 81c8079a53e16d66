package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/miegruneisen/internal/model"
	"github.com/san-kum/miegruneisen/internal/sweep"
)

const (
	metadataFile = "metadata.json"
	sweepFile    = "sweep.csv"
)

var ErrNotFound = errors.New("storage: run not found")

var sweepHeader = []string{"volume", "strain", "Z", "E", "F"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string        `json:"id"`
	Method    string        `json:"method"`
	Timestamp time.Time     `json:"timestamp"`
	Params    model.Params  `json:"params"`
	Samples   int           `json:"samples"`
	Terms     int64         `json:"terms"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Metrics   Scalars       `json:"metrics,omitempty"`
}

// Save writes res under a new run directory and returns its id. metrics
// holds optional scalar summaries such as validation residuals.
func (s *Store) Save(res *sweep.Result, metrics map[string]float64) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", res.Method, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Method:    res.Method,
		Timestamp: now,
		Params:    res.Params,
		Samples:   res.Len(),
		Terms:     res.Terms,
		Elapsed:   res.Elapsed,
		Metrics:   metrics,
	}
	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, sweepFile), func(w io.Writer) error {
		return WriteCSV(w, res)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s metadata: %w", runID, err)
	}
	return &meta, nil
}

// LoadSweep rebuilds the sweep result saved under runID.
func (s *Store) LoadSweep(runID string) (*sweep.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, sweepFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	res.Method = meta.Method
	res.Params = meta.Params
	res.Terms = meta.Terms
	res.Elapsed = meta.Elapsed
	return res, nil
}

// WriteCSV writes one row per volume with full float64 precision.
func WriteCSV(w io.Writer, res *sweep.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sweepHeader); err != nil {
		return err
	}

	for i := range res.Volumes {
		row := make([]string, 0, len(sweepHeader))
		for _, col := range [][]float64{res.Volumes, res.Strains, res.Z, res.E, res.F} {
			row = append(row, strconv.FormatFloat(col[i], 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses the columns written by WriteCSV.
func ReadCSV(r io.Reader) (*sweep.Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(sweepHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header")
	}

	n := len(records) - 1
	res := &sweep.Result{
		Volumes: make([]float64, n),
		Strains: make([]float64, n),
		Z:       make([]float64, n),
		E:       make([]float64, n),
		F:       make([]float64, n),
	}
	cols := [][]float64{res.Volumes, res.Strains, res.Z, res.E, res.F}

	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, sweepHeader[j], err)
			}
			cols[j][i] = v
		}
	}
	return res, nil
}
