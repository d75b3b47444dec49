package api

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMainQueueRunsInOrder(t *testing.T) {
	q := NewMainQueue()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}
	q.Close()

	want := make([]int, 100)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestMainQueueConcurrentPosts(t *testing.T) {
	q := NewMainQueue()

	// count is only touched on the queue goroutine, so no lock is needed
	count := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				q.Post(func() { count++ })
			}
		}()
	}
	wg.Wait()
	q.Close()

	assert.Equal(t, 500, count)
}

func TestMainQueuePostIsAsynchronous(t *testing.T) {
	q := NewMainQueue()
	defer q.Close()

	release := make(chan struct{})
	ran := make(chan struct{})
	q.Post(func() { <-release })
	q.Post(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("posted function ran before the queue reached it")
	default:
	}
	close(release)
	<-ran
}

func TestMainQueueCloseRunsWorkPostedByQueuedFunctions(t *testing.T) {
	q := NewMainQueue()

	var got []string
	posted := make(chan struct{})
	q.Post(func() {
		got = append(got, "outer")
		q.Post(func() { got = append(got, "inner") })
		close(posted)
	})
	<-posted
	q.Close()

	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestMainQueueDropsAfterClose(t *testing.T) {
	q := NewMainQueue()
	q.Close()

	ran := false
	q.Post(func() { ran = true })
	q.Close()
	assert.False(t, ran)
}

func TestDispatcherFunc(t *testing.T) {
	var posted []func()
	d := DispatcherFunc(func(fn func()) { posted = append(posted, fn) })

	called := false
	d.Post(func() { called = true })
	assert.False(t, called)
	posted[0]()
	assert.True(t, called)
}
