package embedding

import (
	"context"
	"math"
	"strings"

	"github.com/minio/highwayhash"
)

var mockKey = []byte("credence-mock-embedding-key-0001")

// MockClient produces deterministic bag-of-words vectors: each lowercased token is
// hashed into one of dims buckets and the result is L2-normalized. Texts sharing
// words therefore score higher under a dot product, which is enough for local runs
// and tests.
type MockClient struct {
	dims int
}

func NewMockClient() *MockClient {
	return &MockClient{dims: 64}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, c.dims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := highwayhash.Sum64([]byte(tok), mockKey)
		vec[h%uint64(c.dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func (c *MockClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := c.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
