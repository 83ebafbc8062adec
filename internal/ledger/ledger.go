// Package ledger persists the set of symbols already surfaced, so the
// same candidate is not re-alerted on every run.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"marketscan/models"
)

// Ledger is the in-memory alert set. It is loaded wholesale at run
// start and written back wholesale at run end (last writer wins).
type Ledger struct {
	path    string
	alerted map[string]struct{}
}

// New returns an empty ledger that will save to path.
func New(path string) *Ledger {
	return &Ledger{path: path, alerted: make(map[string]struct{})}
}

// Load reads the ledger at path. A missing file yields an empty
// ledger; that is the normal first-run state.
func Load(path string) (*Ledger, error) {
	l := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	var file models.LedgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing ledger: %w", err)
	}
	for _, sym := range file.Alerted {
		l.alerted[sym] = struct{}{}
	}
	return l, nil
}

// ShouldAlert reports whether symbol has not been surfaced before.
func (l *Ledger) ShouldAlert(symbol string) bool {
	_, seen := l.alerted[symbol]
	return !seen
}

// Record marks symbol as surfaced. Idempotent.
func (l *Ledger) Record(symbol string) {
	l.alerted[symbol] = struct{}{}
}

// Len returns the number of recorded symbols.
func (l *Ledger) Len() int {
	return len(l.alerted)
}

// Clear drops all recorded symbols. Entries never expire on their own;
// this is the operator's reset hook.
func (l *Ledger) Clear() {
	l.alerted = make(map[string]struct{})
}

// Save writes the ledger back to disk, replacing the previous file.
func (l *Ledger) Save() error {
	symbols := make([]string, 0, len(l.alerted))
	for sym := range l.alerted {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	file := models.LedgerFile{
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Alerted:     symbols,
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}
