package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	"crashsig/internal/signature"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SignatureCache keeps parsed signatures keyed by the hash of their text, so a
// library shared by many crashes is parsed once.
type SignatureCache struct {
	cache  *lru.Cache[string, *signature.Signature]
	opts   []signature.Option
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewSignatureCache(maxSize int, opts ...signature.Option) (*SignatureCache, error) {
	if maxSize <= 0 {
		maxSize = 1024
	}
	c, err := lru.New[string, *signature.Signature](maxSize)
	if err != nil {
		return nil, err
	}
	return &SignatureCache{cache: c, opts: opts}, nil
}

func cacheKey(raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(hash[:16])
}

// Parse returns the cached signature for raw or parses and caches it.
// Parse errors are not cached.
func (c *SignatureCache) Parse(raw string) (*signature.Signature, error) {
	key := cacheKey(raw)
	if sig, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return sig, nil
	}
	c.misses.Add(1)

	sig, err := signature.Parse(raw, c.opts...)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, sig)
	return sig, nil
}

// Stats returns the hit and miss counts since creation.
func (c *SignatureCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *SignatureCache) Size() int {
	return c.cache.Len()
}

func (c *SignatureCache) Invalidate() {
	c.cache.Purge()
}
