package accel

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
)

func TestNewBatch(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{"valid size", 50, 50},
		{"zero defaults to 100", 0, 100},
		{"negative defaults to 100", -1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := NewBatch(tt.size)
			if batch.Size() != tt.expected {
				t.Errorf("expected size %d, got %d", tt.expected, batch.Size())
			}
		})
	}
}

func TestRanges(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		n        int
		expected [][2]int
	}{
		{"empty", 3, 0, [][2]int{}},
		{"exact", 2, 4, [][2]int{{0, 2}, {2, 4}}},
		{"remainder", 3, 7, [][2]int{{0, 3}, {3, 6}, {6, 7}}},
		{"smaller than batch", 10, 4, [][2]int{{0, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBatch(tt.size).Ranges(tt.n)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPoolRunFillsEverySlot(t *testing.T) {
	for _, workers := range []int{0, 1, 4} {
		pool := NewPool(workers, NewBatch(3))
		out := make([]int, 10)

		err := pool.Run(context.Background(), len(out), func(i int) error {
			out[i] = i * i
			return nil
		})
		if err != nil {
			t.Fatalf("workers=%d: Run() failed: %v", workers, err)
		}

		for i, v := range out {
			if v != i*i {
				t.Errorf("workers=%d: slot %d = %d, want %d", workers, i, v, i*i)
			}
		}
	}
}

func TestPoolRunStopsOnError(t *testing.T) {
	boom := errors.New("boom")

	for _, workers := range []int{1, 3} {
		var calls int32
		pool := NewPool(workers, NewBatch(1))

		err := pool.Run(context.Background(), 50, func(i int) error {
			atomic.AddInt32(&calls, 1)
			if i == 0 {
				return boom
			}
			return nil
		})
		if !errors.Is(err, boom) {
			t.Errorf("workers=%d: expected boom, got %v", workers, err)
		}
		if workers == 1 && calls != 1 {
			t.Errorf("sequential run should stop after first error, got %d calls", calls)
		}
	}
}

func TestPoolRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPool(1, nil).Run(ctx, 5, func(int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNewPoolDefaults(t *testing.T) {
	if w := NewPool(-2, nil).Workers(); w != 1 {
		t.Errorf("expected 1 worker, got %d", w)
	}
}
