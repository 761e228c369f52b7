package loader

import "sync"

// executor is the dedicated serial execution context owned by one
// interceptor instance. Classification, the master rewrite and all async
// completion handling run here, so the single-use resource slot needs no
// lock. Created on construction, discarded on teardown; it is never a
// process-wide singleton.
type executor struct {
	tasks     chan func()
	quit      chan struct{}
	finished  chan struct{}
	closeOnce sync.Once
}

func newExecutor() *executor {
	e := &executor{
		tasks:    make(chan func(), 16),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *executor) run() {
	defer close(e.finished)
	for {
		select {
		case task := <-e.tasks:
			task()
		case <-e.quit:
			return
		}
	}
}

// submit schedules fn on the serial context. After close, fn is dropped
// and submit reports false; stale completion callbacks rely on this to
// become no-ops.
func (e *executor) submit(fn func()) bool {
	select {
	case <-e.quit:
		return false
	default:
	}
	select {
	case e.tasks <- fn:
		return true
	case <-e.quit:
		return false
	}
}

// do runs fn on the serial context and waits for it to finish. Reports
// false when the executor shut down before fn could run.
func (e *executor) do(fn func()) bool {
	ran := make(chan struct{})
	if !e.submit(func() {
		defer close(ran)
		fn()
	}) {
		return false
	}
	select {
	case <-ran:
		return true
	case <-e.finished:
		// The loop exited with fn still queued.
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

func (e *executor) close() {
	e.closeOnce.Do(func() {
		close(e.quit)
	})
	<-e.finished
}
