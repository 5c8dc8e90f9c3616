package history

import (
	"fmt"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/Priyanshu23/kmerdbgo/archive"
)

// Writer appends exactly one Item to a database's history stream over
// its lifetime: opened when the writer session starts, filled in and
// stored when Finish is called at session close.
type Writer struct {
	arc      *archive.Archive
	streamID archive.StreamID
	item     Item
	finished bool

	stdout *outputCapture
	stderr *outputCapture
}

// NewWriter registers the history stream on arc and starts a new item.
// If createdFrom is non-nil, every history item already recorded there
// is copied into arc first, so a database derived from another carries
// its predecessor's whole history forward.
func NewWriter(arc *archive.Archive, createdFrom *archive.Archive) (*Writer, error) {
	if createdFrom != nil {
		if err := archive.CopyStream(arc, createdFrom, StreamName); err != nil {
			return nil, err
		}
	}
	id := arc.RegisterStream(StreamName)
	return &Writer{
		arc:      arc,
		streamID: id,
		item:     Item{OpenTimeMillis: nowMillis()},
	}, nil
}

// AppendInfo adds caller-supplied free text (for example, a one-line
// description of what the session did) to the item's Info field.
func (w *Writer) AppendInfo(s string) {
	if w.item.Info != "" {
		w.item.Info += "\n"
	}
	w.item.Info += s
}

// CaptureStdout starts or stops redirecting the process's standard
// output into this item's StdCout field. Calling it a second time with
// the same enable value is a no-op.
func (w *Writer) CaptureStdout(enable bool) error {
	if enable {
		if w.stdout != nil {
			return nil
		}
		c, err := newStdoutCapture()
		if err != nil {
			return err
		}
		w.stdout = c
		return nil
	}
	if w.stdout == nil {
		return nil
	}
	w.item.StdCout = w.stdout.stop()
	w.stdout = nil
	return nil
}

// CaptureStderr is CaptureStdout's counterpart for standard error.
func (w *Writer) CaptureStderr(enable bool) error {
	if enable {
		if w.stderr != nil {
			return nil
		}
		c, err := newStderrCapture()
		if err != nil {
			return err
		}
		w.stderr = c
		return nil
	}
	if w.stderr == nil {
		return nil
	}
	w.item.StdCerr = w.stderr.stop()
	w.stderr = nil
	return nil
}

// Finish captures the command line, a system snapshot, and peak memory
// use, then stores the completed item as the stream's next part.
// Finish is idempotent: a second call is a no-op returning nil.
func (w *Writer) Finish() error {
	if w.finished {
		return nil
	}
	w.finished = true

	if w.stdout != nil {
		w.item.StdCout = w.stdout.stop()
		w.stdout = nil
	}
	if w.stderr != nil {
		w.item.StdCerr = w.stderr.stop()
		w.stderr = nil
	}

	w.item.CommandLine = strings.Join(os.Args, " ")
	w.item.SystemInfo = systemInfo()
	w.item.PeakRSSBytes = peakRSSBytes()
	w.item.CloseTimeMillis = nowMillis()
	w.AppendInfo(fmt.Sprintf("peak RSS: %s", humanize.Bytes(w.item.PeakRSSBytes)))

	_, err := w.arc.AddPart(w.streamID, w.item.Serialize())
	return err
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
