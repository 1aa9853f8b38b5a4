// Package entity turns raw NER spans into the deduplicated entity list that drives
// verification.
package entity

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
)

type Extractor struct {
	ner domain.NERClient
}

func NewExtractor(ner domain.NERClient) *Extractor {
	return &Extractor{ner: ner}
}

// Extract runs the recognizer over text and keeps spans whose label maps to an
// allowed category. Spans are deduplicated by exact text, first occurrence wins.
func (x *Extractor) Extract(ctx context.Context, text string) ([]domain.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	spans, err := x.ner.Recognize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("recognize entities: %w", err)
	}
	return Filter(spans), nil
}

// Filter applies the category allowlist and exact-text dedup to raw spans.
func Filter(spans []domain.RecognizedEntity) []domain.Entity {
	seen := make(map[string]struct{}, len(spans))
	var out []domain.Entity
	for _, s := range spans {
		name := strings.TrimSpace(s.Text)
		if name == "" {
			continue
		}
		category, ok := domain.CategoryForLabel(strings.ToUpper(s.Label))
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, domain.Entity{Name: name, Category: category})
	}
	return out
}
