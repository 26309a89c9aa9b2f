package logger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
)

type sink struct {
	buf *bufio.Writer
	err error
}

// asyncWriter fans formatted lines out to its sinks from one goroutine.
// A sink that fails is disabled and the others keep receiving lines.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once

	mu    sync.Mutex
	sinks []*sink
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, &sink{buf: bufio.NewWriterSize(out, bufSize)})
		}
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				w.flushAll()
				return
			}
			w.writeAll(line)
		case ack := <-w.flushReq:
			w.drain()
			ack <- w.flushAll()
		}
	}
}

// drain writes whatever is already queued.
func (w *asyncWriter) drain() {
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				return
			}
			w.writeAll(line)
		default:
			return
		}
	}
}

// Write queues a copy of p. It blocks only while the queue is full and fails
// once every sink has been disabled.
func (w *asyncWriter) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := w.deadErr(); err != nil {
		return err
	}
	line := append([]byte(nil), p...)
	select {
	case w.queue <- line:
	default:
		queueBlocked.Inc()
		w.queue <- line
	}
	return nil
}

// Flush waits until queued lines reach the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
		return <-ack
	case <-w.done:
		return w.sinkErrs()
	}
}

// Close drains the queue and reports sink failures.
func (w *asyncWriter) Close() error {
	w.once.Do(func() { close(w.queue) })
	<-w.done
	return w.sinkErrs()
}

func (w *asyncWriter) writeAll(line []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range w.sinks {
		if s.err != nil {
			continue
		}
		if _, err := s.buf.Write(line); err != nil {
			w.disable(i, s, err)
			continue
		}
		if err := s.buf.Flush(); err != nil {
			w.disable(i, s, err)
		}
	}
}

func (w *asyncWriter) flushAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, s := range w.sinks {
		if s.err == nil {
			if err := s.buf.Flush(); err != nil {
				w.disable(i, s, err)
			}
		}
	}
	return w.sinkErrsLocked()
}

func (w *asyncWriter) disable(i int, s *sink, err error) {
	s.err = fmt.Errorf("log sink %d: %w", i, err)
	sinkFailures.Inc()
	log.Printf("logger: disabling sink %d: %v", i, err)
}

func (w *asyncWriter) sinkErrs() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sinkErrsLocked()
}

func (w *asyncWriter) sinkErrsLocked() error {
	var errs []error
	for _, s := range w.sinks {
		if s.err != nil {
			errs = append(errs, s.err)
		}
	}
	return errors.Join(errs...)
}

// deadErr is non-nil when no sink can accept writes.
func (w *asyncWriter) deadErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.sinks) == 0 {
		return nil
	}
	for _, s := range w.sinks {
		if s.err == nil {
			return nil
		}
	}
	return w.sinkErrsLocked()
}
