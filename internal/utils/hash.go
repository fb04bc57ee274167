package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// HashHeader is the request header carrying the hex HMAC-SHA256 of the body.
const HashHeader = "HashSHA256"

// Hasher computes keyed HMAC-SHA256 digests. Hash instances are pooled to
// avoid an allocation per request on the hot path of the batch endpoint.
// A Hasher with an empty key is disabled: Enabled reports false and Verify
// accepts everything.
type Hasher struct {
	hashKey []byte
	pool    sync.Pool
}

// NewHasher returns a Hasher keyed with hashKey.
func NewHasher(hashKey string) *Hasher {
	h := &Hasher{hashKey: []byte(hashKey)}
	h.pool.New = func() any {
		return hmac.New(sha256.New, h.hashKey)
	}
	return h
}

// Enabled reports whether a key is configured.
func (h *Hasher) Enabled() bool {
	return h != nil && len(h.hashKey) > 0
}

// Sum returns the raw HMAC-SHA256 digest of data.
func (h *Hasher) Sum(data []byte) []byte {
	mac := h.pool.Get().(hash.Hash)
	mac.Reset()

	mac.Write(data)
	sum := mac.Sum(nil)

	mac.Reset()
	h.pool.Put(mac)

	return sum
}

// SumHex returns the hex-encoded digest of data.
func (h *Hasher) SumHex(data []byte) string {
	return hex.EncodeToString(h.Sum(data))
}

// Verify reports whether hexSum is the digest of data. The comparison runs in
// constant time. A disabled Hasher verifies any input.
func (h *Hasher) Verify(data []byte, hexSum string) bool {
	if !h.Enabled() {
		return true
	}

	expected, err := hex.DecodeString(hexSum)
	if err != nil {
		return false
	}
	return hmac.Equal(h.Sum(data), expected)
}

// HashString computes an HMAC-SHA256 signature over data with hashKey and
// returns it hex-encoded. Unlike [Hasher] it allocates a new HMAC per call.
func HashString(data string, hashKey string) string {
	mac := hmac.New(sha256.New, []byte(hashKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
