package instance

import "sync"

// Cache memoizes materialized sub-instance stages by source path, so a
// placement file shared by several elements is converted exactly once
// even when elements convert concurrently.
type Cache struct {
	mu   sync.Mutex
	done map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{done: make(map[string]string)}
}

// Materialize returns the artifact path for source, invoking build at
// most once per source across all callers. The lock is held through the
// build so concurrent callers for the same source wait rather than
// duplicating work.
func (c *Cache) Materialize(source string, build func() (string, error)) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if artifact, ok := c.done[source]; ok {
		return artifact, nil
	}
	artifact, err := build()
	if err != nil {
		return "", err
	}
	c.done[source] = artifact
	return artifact, nil
}

// Len reports how many sources have been materialized.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.done)
}
