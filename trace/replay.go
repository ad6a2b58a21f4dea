package trace

import (
	"github.com/eapache/queue"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/joshuapare/poolalloc/alloc"
)

var (
	// ErrUnknownBlock indicates a free or check of a name that holds no live block.
	ErrUnknownBlock = errors.New("trace: unknown block")

	// ErrDuplicateBlock indicates an alloc under a name that already holds a live block.
	ErrDuplicateBlock = errors.New("trace: block name already live")

	// ErrCorrupted indicates a check found bytes other than the ones written at alloc.
	ErrCorrupted = errors.New("trace: block contents changed")
)

// Option configures a Replayer.
type Option func(*Replayer)

// WithEvict makes an out-of-memory alloc free the oldest live block and retry,
// until it succeeds or nothing is live.
func WithEvict(on bool) Option {
	return func(r *Replayer) {
		r.evict = on
	}
}

// WithLogger sets the logger for per-operation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(r *Replayer) {
		r.log = l
	}
}

// block is one live allocation made by the script.
type block struct {
	name  string
	addr  alloc.Addr
	count int
	data  []byte
	fill  byte
	freed bool
}

// Result is the outcome of one operation.
type Result struct {
	Op      Op
	Addr    alloc.Addr
	Evicted int
	Err     error
}

// Report summarizes a replay.
type Report struct {
	Ops         int `json:"ops"`
	Allocs      int `json:"allocs"`
	Frees       int `json:"frees"`
	Checks      int `json:"checks"`
	Failures    int `json:"failures"`
	Evictions   int `json:"evictions"`
	Corruptions int `json:"corruptions"`
	Live        int `json:"live"`

	Results []Result `json:"-"`
}

// Replayer runs scripts against one allocator and tracks the blocks they hold.
// Live blocks are also kept in allocation order for eviction.
type Replayer struct {
	a     alloc.Interface
	evict bool
	log   *zap.Logger

	live  map[string]*block
	order *queue.Queue
	seq   int
}

// NewReplayer creates a replayer over a.
func NewReplayer(a alloc.Interface, opts ...Option) *Replayer {
	r := &Replayer{
		a:     a,
		log:   zap.NewNop(),
		live:  make(map[string]*block),
		order: queue.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Live returns the number of live blocks.
func (r *Replayer) Live() int { return len(r.live) }

// Run executes ops in order. Operation failures are recorded in the report
// rather than stopping the run.
func (r *Replayer) Run(ops []Op) Report {
	rep := Report{Results: make([]Result, 0, len(ops))}
	for _, op := range ops {
		res := r.step(op, &rep)
		if res.Err != nil {
			rep.Failures++
			r.log.Debug("op failed",
				zap.Int("line", op.Line),
				zap.Stringer("kind", op.Kind),
				zap.String("name", op.Name),
				zap.Error(res.Err))
		}
		rep.Evictions += res.Evicted
		rep.Results = append(rep.Results, res)
		rep.Ops++
	}
	rep.Live = len(r.live)
	return rep
}

func (r *Replayer) step(op Op, rep *Report) Result {
	res := Result{Op: op}
	switch op.Kind {
	case KindAlloc:
		rep.Allocs++
		res.Addr, res.Evicted, res.Err = r.alloc(op)
	case KindFree:
		rep.Frees++
		res.Err = r.free(op.Name)
	case KindCheck:
		rep.Checks++
		res.Err = r.check(op.Name)
		if errors.Is(res.Err, ErrCorrupted) {
			rep.Corruptions++
		}
	default:
		res.Err = errors.Wrapf(ErrSyntax, "line %d: %s", op.Line, op.Kind)
	}
	return res
}

func (r *Replayer) alloc(op Op) (alloc.Addr, int, error) {
	if _, ok := r.live[op.Name]; ok {
		return 0, 0, errors.Wrapf(ErrDuplicateBlock, "%q", op.Name)
	}
	evicted := 0
	for {
		addr, data, err := r.a.Alloc(op.Count)
		if err == nil {
			r.seq++
			b := &block{name: op.Name, addr: addr, count: op.Count, data: data, fill: byte(r.seq%251 + 1)}
			for i := range data {
				data[i] = b.fill
			}
			r.live[op.Name] = b
			r.order.Add(b)
			return addr, evicted, nil
		}
		if !r.evict || !errors.Is(err, alloc.ErrOutOfMemory) {
			return 0, evicted, err
		}
		victim := r.oldest()
		if victim == nil {
			return 0, evicted, err
		}
		if ferr := r.release(victim); ferr != nil {
			// Still live; keep it evictable.
			r.order.Add(victim)
			return 0, evicted, ferr
		}
		evicted++
		r.log.Debug("evicted", zap.String("victim", victim.name), zap.String("for", op.Name))
	}
}

// oldest pops the oldest block that is still live, skipping freed entries.
func (r *Replayer) oldest() *block {
	for r.order.Length() > 0 {
		b := r.order.Remove().(*block)
		if !b.freed {
			return b
		}
	}
	return nil
}

func (r *Replayer) free(name string) error {
	b, ok := r.live[name]
	if !ok {
		return errors.Wrapf(ErrUnknownBlock, "%q", name)
	}
	return r.release(b)
}

func (r *Replayer) release(b *block) error {
	if err := r.a.Free(b.addr, b.count); err != nil {
		return err
	}
	b.freed = true
	b.data = nil
	delete(r.live, b.name)
	return nil
}

func (r *Replayer) check(name string) error {
	b, ok := r.live[name]
	if !ok {
		return errors.Wrapf(ErrUnknownBlock, "%q", name)
	}
	for i, c := range b.data {
		if c != b.fill {
			return errors.Wrapf(ErrCorrupted, "%q byte %d: got %#x want %#x", name, i, c, b.fill)
		}
	}
	return nil
}

// Release frees every block still live, oldest first. Blocks the allocator
// refuses to free are dropped from tracking and reported in the error.
func (r *Replayer) Release() error {
	var err error
	for b := r.oldest(); b != nil; b = r.oldest() {
		if ferr := r.release(b); ferr != nil {
			err = multierr.Append(err, errors.Wrapf(ferr, "release %q", b.name))
			b.freed = true
			delete(r.live, b.name)
		}
	}
	return err
}
