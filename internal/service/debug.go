package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/Harshitk-cp/credence/internal/config"
	"github.com/Harshitk-cp/credence/internal/domain"
)

const aggregateDumpName = "rag_processed_entries.json"

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// DebugWriter dumps processing output as indented JSON files. At level aggregate it
// writes one fixed-name file per batch; at per_document it also writes one file
// per document and timestamps the batch file.
type DebugWriter struct {
	level string
	dir   string
	now   func() time.Time
}

func NewDebugWriter(level, dir string) *DebugWriter {
	return &DebugWriter{level: level, dir: dir, now: time.Now}
}

func (w *DebugWriter) Enabled() bool {
	return w != nil && w.level != "" && w.level != config.DebugNone
}

// WriteDocument is a no-op unless the level is per_document.
func (w *DebugWriter) WriteDocument(doc *domain.Document) (string, error) {
	if w == nil || w.level != config.DebugPerDocument || doc == nil {
		return "", nil
	}
	name := unsafeFileChars.ReplaceAllString(doc.ID, "_") + ".json"
	return w.write(name, doc)
}

// WriteBatch dumps every stored document of the batch keyed by id.
func (w *DebugWriter) WriteBatch(report *domain.BatchReport) (string, error) {
	if !w.Enabled() || report == nil {
		return "", nil
	}

	entries := make(map[string]any, len(report.Results))
	for _, r := range report.Results {
		switch {
		case r.Document != nil && r.Outcome == domain.OutcomeStored:
			entries[r.DocumentID] = r.Document
		case r.Outcome == domain.OutcomeDuplicate:
			entries[r.DocumentID] = "Duplicate detected, skipping processing."
		default:
			entries[r.DocumentID] = map[string]string{"error": r.Error}
		}
	}

	name := aggregateDumpName
	if w.level == config.DebugPerDocument {
		name = fmt.Sprintf("rag_processed_%s.json", w.now().Format("2006-01-02-15-04"))
	}
	return w.write(name, entries)
}

func (w *DebugWriter) write(name string, v any) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal debug output: %w", err)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write debug output: %w", err)
	}
	return path, nil
}
