package device

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStreamClosed is returned when work is enqueued on a closed stream.
var ErrStreamClosed = errors.New("device: stream closed")

type streamTask struct {
	fn      func() error
	barrier bool
}

// Stream is an ordered asynchronous execution queue standing in for a GPU
// execution stream. Enqueued work runs on a single worker goroutine in FIFO
// order; Enqueue returns once the work is queued, not once it has run.
// Callers that need completion synchronize explicitly.
//
// The first task error poisons the stream: later queued kernels are drained
// without running, and the error is reported by Synchronize and Close.
type Stream struct {
	mu     sync.Mutex
	queue  chan streamTask
	done   chan struct{}
	err    error
	closed bool

	launched atomic.Int64
}

// NewStream creates a stream and starts its worker.
func NewStream() *Stream {
	s := &Stream{
		queue: make(chan streamTask, 64),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Stream) run() {
	for task := range s.queue {
		if !task.barrier && s.Err() != nil {
			continue
		}
		if err := task.fn(); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
	}
	close(s.done)
}

// Enqueue queues one kernel launch. The launch counter is bumped even if the
// stream is already poisoned, mirroring a device that accepts submissions
// whose results will never be observed.
func (s *Stream) Enqueue(task func() error) error {
	s.launched.Add(1)
	return s.push(streamTask{fn: task})
}

func (s *Stream) push(task streamTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.queue <- task
	return nil
}

// Synchronize blocks until all previously queued work has run and returns
// the stream's sticky error, if any.
func (s *Stream) Synchronize() error {
	barrier := make(chan struct{})
	if err := s.push(streamTask{
		fn: func() error {
			close(barrier)
			return nil
		},
		barrier: true,
	}); err != nil {
		return err
	}
	<-barrier
	return s.Err()
}

// Err returns the sticky stream error without synchronizing.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Launched reports how many kernel launches were submitted to the stream.
func (s *Stream) Launched() int64 {
	return s.launched.Load()
}

// Close drains the queue, stops the worker and returns the sticky error.
// Closing an already closed stream is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()
	<-s.done
	return s.Err()
}
