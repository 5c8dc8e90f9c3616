package history

import (
	"io"
	"os"
)

// outputCapture redirects one of the process's standard streams into a
// pipe for the duration of a writer session, the way the original
// captured cout/cerr by swapping in its own streambuf. Go has no
// per-goroutine stdout, so this is process-wide: only one capture of a
// given stream may be active at a time.
type outputCapture struct {
	w       *os.File
	r       *os.File
	restore func()
	done    chan string
}

func newStdoutCapture() (*outputCapture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	orig := os.Stdout
	os.Stdout = w
	return startCapture(r, w, func() { os.Stdout = orig }), nil
}

func newStderrCapture() (*outputCapture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	orig := os.Stderr
	os.Stderr = w
	return startCapture(r, w, func() { os.Stderr = orig }), nil
}

func startCapture(r, w *os.File, restore func()) *outputCapture {
	c := &outputCapture{w: w, r: r, restore: restore, done: make(chan string, 1)}
	go func() {
		b, _ := io.ReadAll(r)
		c.done <- string(b)
	}()
	return c
}

// stop restores the original stream and returns everything written to
// the pipe while the capture was active.
func (c *outputCapture) stop() string {
	c.restore()
	c.w.Close()
	s := <-c.done
	c.r.Close()
	return s
}
