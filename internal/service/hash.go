package service

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
)

// hashKey is fixed so digests are stable across processes and releases.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// ContentHash is the dedup digest of a document's text: HighwayHash-256, hex encoded.
func ContentHash(text string) string {
	sum := highwayhash.Sum([]byte(text), hashKey)
	return hex.EncodeToString(sum[:])
}
