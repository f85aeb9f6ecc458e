package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelKeepsOrder(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5, 6, 7}
	out := make([]int, len(inputs))

	err := Parallel(context.Background(), inputs, 3, func(ctx context.Context, i int, n int) error {
		out[i] = n * n
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range inputs {
		if out[i] != n*n {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], n*n)
		}
	}
}

func TestParallelStopsOnError(t *testing.T) {
	want := errors.New("boom")
	var calls atomic.Int32
	inputs := make([]int, 100)

	err := Parallel(context.Background(), inputs, 2, func(ctx context.Context, i int, _ int) error {
		calls.Add(1)
		if i == 3 {
			return want
		}
		return nil
	})
	if !errors.Is(err, want) {
		t.Fatalf("got %v, want %v", err, want)
	}
	if calls.Load() == int32(len(inputs)) {
		t.Fatal("work continued after the error")
	}
}

func TestParallelEmpty(t *testing.T) {
	if err := Parallel(context.Background(), []string(nil), 4, nil); err != nil {
		t.Fatal(err)
	}
}
