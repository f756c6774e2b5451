package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// task asks a worker either to evaluate f at a fixed index, or to keep
// evaluating f until a non-nil result is found and the remaining counter
// is exhausted.
type task struct {
	search  bool
	i       int
	f       func(int) interface{}
	ctr     *int64
	results []interface{}
	done    chan<- struct{}
}

func (t task) run() {
	if t.search {
		for atomic.LoadInt64(t.ctr) > 0 {
			res := t.f(0)
			if res == nil {
				continue
			}
			i := atomic.AddInt64(t.ctr, -1)
			t.done <- struct{}{}
			if i < 0 {
				return
			}
			t.results[i] = res
		}
		return
	}
	t.results[t.i] = t.f(t.i)
	atomic.AddInt64(t.ctr, -1)
	t.done <- struct{}{}
}

// Pool is a fixed set of workers used to parallelize expensive operations,
// like Paillier encryptions or proof verifications.
//
// Functions taking a *Pool accept a nil receiver, in which case the work is
// done on the calling goroutine instead.
type Pool struct {
	tasks       chan task
	done        chan struct{}
	workerCount int
}

// NewPool creates a new pool with a certain number of workers.
//
// If count <= 0, the number of available CPUs is used instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		tasks:       make(chan task),
		done:        make(chan struct{}),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for t := range p.tasks {
				t.run()
			}
		}()
	}
	return p
}

// TearDown stops the pool's workers. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	close(p.tasks)
}

// Search queries f until count successes are found.
//
// f should try a single candidate, returning nil when that candidate is
// unsuccessful. The result contains the first count successes.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	if p == nil {
		results := make([]interface{}, count)
		for i := range results {
			for results[i] = f(); results[i] == nil; results[i] = f() {
			}
		}
		return results
	}

	results := make([]interface{}, count)
	ctr := int64(count)
	t := task{
		search:  true,
		f:       func(int) interface{} { return f() },
		ctr:     &ctr,
		results: results,
		done:    p.done,
	}
	for i := 0; i < p.workerCount; i++ {
		p.tasks <- t
	}
	for atomic.LoadInt64(&ctr) > 0 {
		<-p.done
	}
	return results
}

// Parallelize calls f count times, with indices 0..count-1, returning
// the slice [f(0), f(1), …, f(count-1)].
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	if p == nil {
		results := make([]interface{}, count)
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	results := make([]interface{}, count)
	ctr := int64(count)
	sent := 0
	for sent < count {
		t := task{
			i:       sent,
			f:       f,
			ctr:     &ctr,
			results: results,
			done:    p.done,
		}
		// Sending all tasks at once could block if all workers are busy,
		// so interleave draining completions.
		select {
		case p.tasks <- t:
			sent++
		case <-p.done:
		}
	}
	for atomic.LoadInt64(&ctr) > 0 {
		<-p.done
	}
	return results
}

// LockedReader wraps an io.Reader so it is safe for concurrent reads.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying reader.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
