// Package layout describes allocator configurations: the ordered pool specs
// and the element size, with named presets, a compact string form and YAML
// files.
package layout

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/poolalloc/alloc"
)

var (
	// ErrEmpty indicates a layout with no pools.
	ErrEmpty = errors.New("layout: no pools")

	// ErrBadPool indicates a pool entry with a non-positive count or size.
	ErrBadPool = errors.New("layout: bad pool entry")

	// ErrSyntax indicates a malformed compact layout string.
	ErrSyntax = errors.New("layout: syntax error")

	// ErrUnknownPreset indicates a preset name that is not defined.
	ErrUnknownPreset = errors.New("layout: unknown preset")
)

// PoolSpec is one pool: Chunks chunks of ChunkSize bytes.
type PoolSpec struct {
	Chunks    int `yaml:"chunks" json:"chunks"`
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
}

// Layout is a full allocator configuration.
type Layout struct {
	// Name for this layout (for presets and reports)
	Name string `yaml:"name" json:"name"`

	// ElemSize is the size of one element in bytes; 0 means 1.
	ElemSize int `yaml:"elem_size" json:"elem_size"`

	// Pools in selection order.
	Pools []PoolSpec `yaml:"pools" json:"pools"`
}

// Predefined layouts.
var (
	// Small: a handful of fine-grained pools, 6 KiB total.
	Small = Layout{
		Name:     "Small",
		ElemSize: 1,
		Pools: []PoolSpec{
			{Chunks: 128, ChunkSize: 16},
			{Chunks: 32, ChunkSize: 64},
			{Chunks: 8, ChunkSize: 256},
		},
	}

	// Balanced: chunk sizes growing by 4x, 160 KiB total.
	Balanced = Layout{
		Name:     "Balanced",
		ElemSize: 1,
		Pools: []PoolSpec{
			{Chunks: 1024, ChunkSize: 16},
			{Chunks: 512, ChunkSize: 64},
			{Chunks: 256, ChunkSize: 256},
			{Chunks: 48, ChunkSize: 1024},
		},
	}

	// Wide: few large chunks for buffer-sized requests, 1.25 MiB total.
	Wide = Layout{
		Name:     "Wide",
		ElemSize: 1,
		Pools: []PoolSpec{
			{Chunks: 256, ChunkSize: 1024},
			{Chunks: 64, ChunkSize: 4096},
			{Chunks: 48, ChunkSize: 16384},
		},
	}

	// Default layout (used if none specified).
	Default = Balanced
)

var presets = map[string]Layout{
	"small":    Small,
	"balanced": Balanced,
	"wide":     Wide,
}

// Preset returns the named preset (case-insensitive).
func Preset(name string) (Layout, error) {
	l, ok := presets[strings.ToLower(name)]
	if !ok {
		return Layout{}, errors.Wrapf(ErrUnknownPreset, "%q", name)
	}
	return l.clone(), nil
}

// PresetNames returns the preset names in size order.
func PresetNames() []string {
	return []string{"small", "balanced", "wide"}
}

func (l Layout) clone() Layout {
	l.Pools = append([]PoolSpec(nil), l.Pools...)
	return l
}

// Parse reads the compact form "COUNTxSIZE[,COUNTxSIZE...]", for example
// "64x8,16x64". Whitespace around entries is ignored.
func Parse(s string) (Layout, error) {
	l := Layout{ElemSize: 1}
	for i, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		count, size, ok := strings.Cut(strings.ToLower(entry), "x")
		if !ok {
			return Layout{}, errors.Wrapf(ErrSyntax, "entry %d %q: want COUNTxSIZE", i+1, entry)
		}
		c, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return Layout{}, errors.Wrapf(ErrSyntax, "entry %d %q: count: %v", i+1, entry, err)
		}
		sz, err := strconv.Atoi(strings.TrimSpace(size))
		if err != nil {
			return Layout{}, errors.Wrapf(ErrSyntax, "entry %d %q: size: %v", i+1, entry, err)
		}
		l.Pools = append(l.Pools, PoolSpec{Chunks: c, ChunkSize: sz})
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// String renders the layout in the compact form accepted by Parse.
func (l Layout) String() string {
	parts := make([]string, len(l.Pools))
	for i, p := range l.Pools {
		parts[i] = strconv.Itoa(p.Chunks) + "x" + strconv.Itoa(p.ChunkSize)
	}
	return strings.Join(parts, ",")
}

// Load reads a YAML layout file.
func Load(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, errors.Wrap(err, "layout: read")
	}
	return Decode(data)
}

// Decode parses a YAML layout document.
func Decode(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrapf(ErrSyntax, "yaml: %v", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that the layout has pools and every entry is positive.
func (l Layout) Validate() error {
	if len(l.Pools) == 0 {
		return ErrEmpty
	}
	if l.ElemSize < 0 {
		return errors.Wrapf(ErrBadPool, "elem_size %d", l.ElemSize)
	}
	for i, p := range l.Pools {
		if p.Chunks <= 0 || p.ChunkSize <= 0 {
			return errors.Wrapf(ErrBadPool, "pool %d: %d chunks of %d bytes", i, p.Chunks, p.ChunkSize)
		}
	}
	return nil
}

// Capacity returns the total bytes across all pools.
func (l Layout) Capacity() int {
	total := 0
	for _, p := range l.Pools {
		total += p.Chunks * p.ChunkSize
	}
	return total
}

// Specs converts the pools into allocator specs.
func (l Layout) Specs() []alloc.Spec {
	specs := make([]alloc.Spec, len(l.Pools))
	for i, p := range l.Pools {
		specs[i] = alloc.Spec{Chunks: p.Chunks, ChunkSize: p.ChunkSize}
	}
	return specs
}

// Build validates the layout and constructs an allocator from it. Options
// given here are applied after the layout's element size.
func (l Layout) Build(opts ...alloc.Option) (*alloc.Allocator, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	elem := l.ElemSize
	if elem == 0 {
		elem = 1
	}
	all := append([]alloc.Option{alloc.WithElemSize(elem)}, opts...)
	return alloc.New(l.Specs(), all...)
}
