package concur

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTaskPoolSubmitRunsAllJobs(t *testing.T) {
	pool := NewTaskPool(4, 16)
	defer pool.Stop()

	var counter int64
	const n = 50
	tasks := make([]*Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = pool.Submit(func() { atomic.AddInt64(&counter, 1) })
	}
	for _, task := range tasks {
		if !task.Await(time.Second) {
			t.Fatalf("task did not complete within timeout")
		}
	}
	if atomic.LoadInt64(&counter) != n {
		t.Fatalf("counter = %d, want %d", counter, n)
	}
}

func TestTaskAwaitTimesOutOnSlowTask(t *testing.T) {
	pool := NewTaskPool(1, 4)
	defer pool.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	task := pool.Submit(func() {
		close(started)
		<-release
	})
	<-started
	if task.Await(10 * time.Millisecond) {
		t.Fatalf("Await should time out while the task is still blocked")
	}
	close(release)
	if !task.Await(time.Second) {
		t.Fatalf("Await should succeed once the task is released")
	}
}

func TestTaskPoolStopDrainsWorkers(t *testing.T) {
	pool := NewTaskPool(2, 4)
	done := make(chan struct{})
	go func() {
		pool.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop did not return in time")
	}
}
