package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Spinner draws a progress indicator on a terminal line until stopped.
// Anything else bound for the same terminal should be written through the
// Spinner so that frames and other output never share a line.
type Spinner struct {
	out      io.Writer
	chars    []string
	delay    time.Duration
	message  string
	active   bool
	drawn    int
	mu       sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

func New(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:     out,
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		delay:   100 * time.Millisecond,
		message: message,
	}
}

func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.mu.Lock()
			frame := fmt.Sprintf("%s %s", s.chars[i%len(s.chars)], s.message)
			fmt.Fprint(s.out, "\r"+frame)
			s.drawn = len(frame)
			s.mu.Unlock()

			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the spinner and clears its line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	s.clearLine()
	s.mu.Unlock()
}

// Write clears the current frame and writes p to the underlying writer. The
// next tick redraws the spinner below it.
func (s *Spinner) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLine()
	return s.out.Write(p)
}

// clearLine blanks the last drawn frame. s.mu must be held.
func (s *Spinner) clearLine() {
	if s.drawn == 0 {
		return
	}
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.drawn)+"\r")
	s.drawn = 0
}

func (s *Spinner) Update(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}
