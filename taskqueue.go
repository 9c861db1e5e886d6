package gpuimage

import "sync"

// Task is a deferred GPU operation. It runs on the render-owning goroutine
// with that goroutine's Context.
type Task func(ctx Context)

// TaskQueue is a FIFO of tasks. Any goroutine may Push; only the goroutine
// owning the Context may Run. The zero value is ready to use.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []Task
	spare []Task
}

// Push appends a task.
func (q *TaskQueue) Push(t Task) {
	if t == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()
}

// Len returns the number of pending tasks.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Run executes pending tasks in submission order until the queue is empty,
// including tasks pushed by the tasks themselves. It returns how many ran.
// The lock is not held while a task executes.
func (q *TaskQueue) Run(ctx Context) int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return n
		}
		batch := q.tasks
		q.tasks = q.spare[:0]
		q.mu.Unlock()

		for i, t := range batch {
			t(ctx)
			batch[i] = nil
			n++
		}

		q.mu.Lock()
		q.spare = batch[:0]
		q.mu.Unlock()
	}
}

// Discard drops every pending task without running it.
func (q *TaskQueue) Discard() {
	q.mu.Lock()
	clear(q.tasks)
	q.tasks = q.tasks[:0]
	q.mu.Unlock()
}
