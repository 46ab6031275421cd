// Package bufferpool wraps zap's buffer pool so the rest of the module can
// reuse the same pooled []byte buffers the logger already allocates, instead
// of introducing a second pooling mechanism.
package bufferpool

import "go.uber.org/zap/buffer"

// Pool hands out pooled buffers for short-lived byte building, such as
// config.Config.DatabaseName's name assembly.
type Pool struct {
	pool buffer.Pool
}

// NewPool returns a ready-to-use Pool.
func NewPool() *Pool {
	return &Pool{pool: buffer.NewPool()}
}

// Get returns a truncated buffer from the pool. Call Free on the result when
// done with it.
func (p *Pool) Get() *buffer.Buffer {
	return p.pool.Get()
}
