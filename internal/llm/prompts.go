package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/credence/internal/domain"
)

const nerPrompt = `You are a named entity recognizer for news articles. List every named entity mentioned in the article below.

For each entity give:
- text: the entity exactly as it appears in the article
- label: one of "ORG", "GPE", "PERSON", "PRODUCT", "DATE", "EVENT", "NORP", "OTHER"

Use GPE for countries, cities and other geopolitical places.

Respond ONLY with a JSON array. No markdown, no explanation. Example:
[{"text":"European Central Bank","label":"ORG"},{"text":"Frankfurt","label":"GPE"}]

If there are no entities, respond with an empty array: []

Article:
%s`

const sentimentPrompt = `Classify the overall sentiment of the following news text as POSITIVE or NEGATIVE, and give your confidence between 0.5 and 1.0.

Respond ONLY with a JSON object. No markdown, no explanation. Example:
{"label":"NEGATIVE","confidence":0.87}

Text:
%s`

// completer is the one call every provider implements; the task methods are
// shared on top of it.
type completer interface {
	complete(ctx context.Context, prompt string) (string, error)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func recognize(ctx context.Context, c completer, text string) ([]domain.RecognizedEntity, error) {
	result, err := c.complete(ctx, fmt.Sprintf(nerPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("recognize entities: %w", err)
	}
	return parseEntities(result)
}

func parseEntities(raw string) ([]domain.RecognizedEntity, error) {
	raw = stripFences(raw)
	if raw == "" || raw == "null" {
		return []domain.RecognizedEntity{}, nil
	}

	var entities []domain.RecognizedEntity
	if err := json.Unmarshal([]byte(raw), &entities); err != nil {
		return nil, fmt.Errorf("parse entity result: %w (raw: %s)", err, raw)
	}
	for i := range entities {
		entities[i].Label = strings.ToUpper(strings.TrimSpace(entities[i].Label))
	}
	return entities, nil
}

func classifySentiment(ctx context.Context, c completer, text string) (domain.SentimentLabel, float64, error) {
	result, err := c.complete(ctx, fmt.Sprintf(sentimentPrompt, text))
	if err != nil {
		return "", 0, fmt.Errorf("classify sentiment: %w", err)
	}
	return parseSentiment(result)
}

func parseSentiment(raw string) (domain.SentimentLabel, float64, error) {
	raw = stripFences(raw)

	var out struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", 0, fmt.Errorf("parse sentiment result: %w (raw: %s)", err, raw)
	}

	label := domain.SentimentNegative
	if strings.EqualFold(strings.TrimSpace(out.Label), string(domain.SentimentPositive)) {
		label = domain.SentimentPositive
	}
	return label, min(max(out.Confidence, 0), 1), nil
}
