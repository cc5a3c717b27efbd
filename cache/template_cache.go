package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

type entry[V any] struct {
	text  string
	value V
}

// TemplateCache memoizes values derived from template text, such as the
// segments produced by the tokenizer. Entries are keyed by the template's
// fingerprint and confirmed against the full text, so a hash collision is a
// miss rather than a wrong answer.
type TemplateCache[V any] struct {
	cache *lru.Cache[uint64, entry[V]]
}

func NewTemplateCache[V any](size int) (*TemplateCache[V], error) {
	c, err := lru.New[uint64, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &TemplateCache[V]{cache: c}, nil
}

func (c *TemplateCache[V]) Get(text string) (V, bool) {
	if e, ok := c.cache.Get(FingerprintString(text)); ok && e.text == text {
		return e.value, true
	}
	var zero V
	return zero, false
}

func (c *TemplateCache[V]) Set(text string, value V) {
	c.cache.Add(FingerprintString(text), entry[V]{text: text, value: value})
}

// GetOrSet returns the cached value for text, computing and storing it on a miss.
func (c *TemplateCache[V]) GetOrSet(text string, compute func(string) V) V {
	if v, ok := c.Get(text); ok {
		return v
	}
	v := compute(text)
	c.Set(text, v)
	return v
}

func (c *TemplateCache[V]) Len() int {
	return c.cache.Len()
}

func (c *TemplateCache[V]) Purge() {
	c.cache.Purge()
}
