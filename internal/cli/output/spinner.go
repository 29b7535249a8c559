package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner displays a progress animation while a network call is running.
// Stop may be called more than once; only the first call has an effect.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration

	done    chan struct{}
	stopped sync.WaitGroup
	once    sync.Once
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.stopped.Add(1)
	go func() {
		defer s.stopped.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the spinner and clears the line.
func (s *Spinner) Stop() {
	s.finish("\r\033[K")
}

func (s *Spinner) finish(final string) {
	s.once.Do(func() {
		close(s.done)
		s.stopped.Wait()
		fmt.Fprint(s.w, final)
	})
}

// Run shows the spinner while fn runs. A nil spinner just runs fn.
func (s *Spinner) Run(fn func() error) error {
	if s == nil {
		return fn()
	}
	s.Start()
	err := fn()
	s.Stop()
	return err
}
