package alloc

import (
	"testing"
)

// Benchmark_Alloc_Free_Small benchmarks a single-chunk alloc/free cycle.
func Benchmark_Alloc_Free_Small(b *testing.B) {
	a := newTestAllocator(b, []Spec{{Chunks: 4096, ChunkSize: 16}, {Chunks: 512, ChunkSize: 256}})

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		addr, _, err := a.Alloc(16)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(addr, 16); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark_Alloc_Fill benchmarks filling a pool with mixed run lengths.
func Benchmark_Alloc_Fill(b *testing.B) {
	specs := []Spec{{Chunks: 4096, ChunkSize: 16}}

	b.ReportAllocs()

	for range b.N {
		b.StopTimer()
		a, err := New(specs, WithHeapRegions())
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()

		for i := 0; ; i++ {
			if _, _, err := a.Alloc(16 + (i%8)*16); err != nil {
				break
			}
		}

		b.StopTimer()
		_ = a.Close()
		b.StartTimer()
	}
}

// Benchmark_Locked_Parallel benchmarks contended alloc/free through Locked.
func Benchmark_Locked_Parallel(b *testing.B) {
	l := NewLocked(newTestAllocator(b, []Spec{{Chunks: 8192, ChunkSize: 32}}))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			addr, _, err := l.Alloc(24)
			if err != nil {
				b.Error(err)
				return
			}
			if err := l.Free(addr, 24); err != nil {
				b.Error(err)
				return
			}
		}
	})
}
