package gpuimage

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTaskQueueRunsInOrder(t *testing.T) {
	var q TaskQueue
	var got []int
	for i := range 5 {
		q.Push(func(Context) { got = append(got, i) })
	}
	if q.Len() != 5 {
		t.Fatalf("Len = %d, want 5", q.Len())
	}
	if n := q.Run(nil); n != 5 {
		t.Errorf("Run = %d, want 5", n)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if q.Len() != 0 {
		t.Errorf("Len after Run = %d, want 0", q.Len())
	}
}

func TestTaskQueueRunsTasksPushedByTasks(t *testing.T) {
	var q TaskQueue
	var got []string
	q.Push(func(Context) {
		got = append(got, "a")
		q.Push(func(Context) { got = append(got, "c") })
	})
	q.Push(func(Context) { got = append(got, "b") })

	if n := q.Run(nil); n != 3 {
		t.Errorf("Run = %d, want 3", n)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestTaskQueueDiscard(t *testing.T) {
	var q TaskQueue
	ran := false
	q.Push(func(Context) { ran = true })
	q.Discard()
	if n := q.Run(nil); n != 0 || ran {
		t.Errorf("Run after Discard = %d (ran=%v), want nothing", n, ran)
	}
}

func TestTaskQueueIgnoresNil(t *testing.T) {
	var q TaskQueue
	q.Push(nil)
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
}

func TestTaskQueueConcurrentPush(t *testing.T) {
	var q TaskQueue
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Push(func(Context) {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()
	q.Run(nil)
	if count != 800 {
		t.Errorf("ran %d tasks, want 800", count)
	}
}
