package alloc

import (
	"go.uber.org/zap"

	"github.com/joshuapare/poolalloc/internal/arena"
)

// Option configures an Allocator.
type Option func(*options)

type options struct {
	elemSize int
	log      *zap.Logger
	acquire  func(size int) (*arena.Region, error)
}

func defaultOptions() options {
	return options{
		elemSize: 1,
		acquire:  arena.New,
	}
}

// WithElemSize sets the size in bytes of one element; Alloc and Free take
// element counts. Defaults to 1.
func WithElemSize(n int) Option {
	return func(o *options) {
		o.elemSize = n
	}
}

// WithLogger sets the logger used for allocation decisions.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithHeapRegions backs pools with Go heap memory instead of OS mappings.
func WithHeapRegions() Option {
	return func(o *options) {
		o.acquire = arena.NewHeap
	}
}
