// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestRun(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	results := make([]int, n)

	if err := pool.Run(n, func(i int) error {
		results[i] = i * 2
		return nil
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestRunZeroN(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var called bool
	if err := pool.Run(0, func(int) error {
		called = true
		return nil
	}); err != nil {
		t.Errorf("Run(0): %v", err)
	}
	if called {
		t.Error("Run with n=0 should not call the task")
	}
}

func TestRunReturnsLowestIndexError(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	errLow := errors.New("low")
	var ran atomic.Int32
	err := pool.Run(50, func(i int) error {
		ran.Add(1)
		switch i {
		case 7:
			return errLow
		case 30:
			return errors.New("high")
		}
		return nil
	})

	if !errors.Is(err, errLow) {
		t.Errorf("Run error = %v, want %v", err, errLow)
	}
	if ran.Load() != 50 {
		t.Errorf("ran %d tasks, want all 50 despite failures", ran.Load())
	}
}

func TestRunRecoversPanic(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	err := pool.Run(8, func(i int) error {
		if i == 3 {
			panic("boom")
		}
		return nil
	})
	if !errors.Is(err, ErrTaskPanicked) {
		t.Fatalf("Run error = %v, want ErrTaskPanicked", err)
	}
}

func TestRunNested(t *testing.T) {
	// More outer tasks than workers, each fanning out again on the same pool.
	pool := New(2)
	defer pool.Close()

	const outer, inner = 16, 16
	var cells [outer][inner]int32

	done := make(chan error, 1)
	go func() {
		done <- pool.Run(outer, func(i int) error {
			return pool.Run(inner, func(j int) error {
				atomic.AddInt32(&cells[i][j], 1)
				return nil
			})
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("nested Run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("nested Run deadlocked")
	}

	for i := range outer {
		for j := range inner {
			if cells[i][j] != 1 {
				t.Errorf("cell (%d,%d) ran %d times, want 1", i, j, cells[i][j])
			}
		}
	}
}

func TestRunClaimsInOrder(t *testing.T) {
	// A task may wait for its predecessor: claims are in index order, so the
	// predecessor is always already running.
	pool := New(4)
	defer pool.Close()

	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	turn := 0
	var order []int

	err := pool.Run(32, func(i int) error {
		mu.Lock()
		defer mu.Unlock()
		for turn != i {
			cond.Wait()
		}
		order = append(order, i)
		turn++
		cond.Broadcast()
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d", i, v)
		}
	}
}

func TestParallelFor(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	results := make([]int, n)

	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForAtomic(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	results := make([]int, n)

	pool.ParallelForAtomic(n, func(i int) {
		results[i] = i * 2
	})

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForSmallN(t *testing.T) {
	pool := New(8)
	defer pool.Close()

	n := 3
	var count atomic.Int32

	pool.ParallelFor(n, func(start, end int) {
		count.Add(int32(end - start))
	})

	if count.Load() != int32(n) {
		t.Errorf("count = %d, want %d", count.Load(), n)
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close() // Should not panic
}

func TestClosedPoolFallback(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 100
	results := make([]int, n)

	if err := pool.Run(n, func(i int) error {
		results[i] = i * 2
		return nil
	}); err != nil {
		t.Fatalf("Run on closed pool: %v", err)
	}

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestCloseDuringRun(t *testing.T) {
	for range 50 {
		pool := New(4)
		var wg sync.WaitGroup
		var total atomic.Int64
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 20 {
					if err := pool.Run(16, func(i int) error {
						total.Add(1)
						return nil
					}); err != nil {
						t.Errorf("Run: %v", err)
					}
				}
			}()
		}
		runtime.Gosched()
		pool.Close()
		wg.Wait()

		if got := total.Load(); got != 8*20*16 {
			t.Fatalf("ran %d tasks, want %d", got, 8*20*16)
		}
	}
}

func BenchmarkRun(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	n := 1000

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.Run(n, func(i int) error {
			_ = i * i
			return nil
		})
	}
}

func BenchmarkRunNested(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pool.Run(32, func(int) error {
			return pool.Run(32, func(j int) error {
				_ = j * j
				return nil
			})
		})
	}
}

func BenchmarkParallelFor(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	n := 1000

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.ParallelFor(n, func(start, end int) {
			for j := start; j < end; j++ {
				_ = j * j
			}
		})
	}
}
