package game

import "sync"

// Coordinator is a per-team shared blackboard. Brains of one team get
// the same instance and can use it to split up objectives. It is safe
// for concurrent use so enforced-deadline brains may touch it from
// their own goroutines.
type Coordinator struct {
	mu   sync.Mutex
	data map[string]any
}

// NewCoordinator returns an empty blackboard.
func NewCoordinator() *Coordinator {
	return &Coordinator{data: map[string]any{}}
}

// Get returns the stored value and whether it exists.
func (c *Coordinator) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores a value under key.
func (c *Coordinator) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Delete removes a key.
func (c *Coordinator) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len is the number of stored keys.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
