package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyReadDefaults(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	var d Document
	d.ApplyReadDefaults(now)
	assert.Equal(t, DocumentStatusRaw, d.Status)
	assert.Equal(t, now.UTC(), d.Timestamp)
	assert.NotNil(t, d.Metadata)

	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ready := Document{Status: DocumentStatusReady, Timestamp: ts, Metadata: map[string]any{"k": "v"}}
	ready.ApplyReadDefaults(now)
	assert.Equal(t, DocumentStatusReady, ready.Status)
	assert.Equal(t, ts, ready.Timestamp)
	assert.Equal(t, "v", ready.Metadata["k"])
}

func TestCategoryForLabel(t *testing.T) {
	c, ok := CategoryForLabel("GPE")
	assert.True(t, ok)
	assert.Equal(t, EntityPlace, c)

	_, ok = CategoryForLabel("DATE")
	assert.False(t, ok)
}

func TestVerificationResultSignals(t *testing.T) {
	empty := VerificationResult{
		FactChecks: map[string][]FactCheckClaim{"Acme": {}},
		Summaries:  map[string]string{"Acme": ""},
	}
	assert.False(t, empty.HasFactChecks())
	assert.False(t, empty.HasSummaries())

	full := VerificationResult{
		FactChecks: map[string][]FactCheckClaim{"Acme": {{ClaimText: "x"}}},
		Summaries:  map[string]string{"Acme": "A company."},
	}
	assert.True(t, full.HasFactChecks())
	assert.True(t, full.HasSummaries())
}
