package alloc

import "sync"

// Locked serializes every call to an Allocator behind one mutex.
// It is the supported way to share an allocator between goroutines.
type Locked struct {
	mu sync.Mutex
	a  *Allocator
}

// NewLocked wraps a. The caller must stop using a directly.
func NewLocked(a *Allocator) *Locked {
	return &Locked{a: a}
}

// Alloc is Allocator.Alloc under the lock.
func (l *Locked) Alloc(count int) (Addr, []byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Alloc(count)
}

// Free is Allocator.Free under the lock.
func (l *Locked) Free(addr Addr, count int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Free(addr, count)
}

// Lookup is Allocator.Lookup under the lock.
func (l *Locked) Lookup(addr Addr, count int) (Ref, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Lookup(addr, count)
}

// Stats is Allocator.Stats under the lock.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Stats()
}

// Close is Allocator.Close under the lock.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Close()
}

// Compile-time interface check
var _ Interface = (*Locked)(nil)
