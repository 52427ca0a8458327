package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// ManifestName is the file name of the manifest inside the output directory
const ManifestName = "manifest.jsonl"

// Record describes one written sample
type Record struct {
	RunID       string   `json:"run_id"`
	Input       string   `json:"input"`
	GroundTruth string   `json:"gt"`
	Source      string   `json:"source"`
	Category    string   `json:"category,omitempty"`
	Index       int      `json:"index"`
	Sigma       float64  `json:"sigma"`
	Shapes      []string `json:"shapes"`
	Origin      [2]int   `json:"origin"`
	Size        int      `json:"size"`
}

// Manifest appends one JSON line per sample. It is safe for concurrent use.
type Manifest struct {
	mu    sync.Mutex
	runID string
	f     *os.File
	enc   *json.Encoder
}

// CreateManifest opens path for appending and assigns a new run ID
func CreateManifest(path string) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	return &Manifest{
		runID: uuid.NewString(),
		f:     f,
		enc:   json.NewEncoder(f),
	}, nil
}

// RunID identifies the run the manifest records belong to
func (m *Manifest) RunID() string {
	return m.runID
}

// Append writes r, stamped with the run ID
func (m *Manifest) Append(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.RunID = m.runID
	if err := m.enc.Encode(r); err != nil {
		return fmt.Errorf("failed to write manifest record: %w", err)
	}
	return nil
}

// Close closes the underlying file
func (m *Manifest) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.f.Close()
}

// ReadManifest loads every record of a manifest file
func ReadManifest(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
