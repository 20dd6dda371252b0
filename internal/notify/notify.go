package notify

import (
	"fmt"
	"io"
	"sync"
)

// Notifier receives transient user-facing notifications. Controllers
// convert fetch failures into these instead of returning errors upward.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Writer prints notifications to a stream, one per line.
type Writer struct {
	Out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{Out: out}
}

func (w *Writer) Success(msg string) {
	fmt.Fprintln(w.Out, msg)
}

func (w *Writer) Error(msg string) {
	fmt.Fprintln(w.Out, "error: "+msg)
}

// Recorder captures notifications for tests.
type Recorder struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

func (r *Recorder) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[len(r.Errors)-1]
}
