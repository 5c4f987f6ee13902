package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// TickInterval is how often a running spinner advances.
const TickInterval = 100 * time.Millisecond

// Tracker wraps a spinner shown on stderr while git runs. The spinner
// advances on its own until Finish. A nil *Tracker is a valid no-op tracker.
type Tracker struct {
	bar  *progressbar.ProgressBar
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewSpinner creates a spinner on stderr for operations with unknown duration.
func NewSpinner(label string) *Tracker {
	return NewSpinnerTo(os.Stderr, label)
}

// NewSpinnerTo creates a spinner writing to w and starts it.
func NewSpinnerTo(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	_ = bar.RenderBlank()

	t := &Tracker{
		bar:  bar,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.spin()
	return t
}

func (t *Tracker) spin() {
	defer close(t.done)
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			_ = t.bar.Add(1)
		}
	}
}

// Finish stops the spinner and clears its line. Errors are reported by the
// caller, so nothing is left behind. Safe to call more than once.
func (t *Tracker) Finish() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		close(t.stop)
		<-t.done
		_ = t.bar.Finish()
		_ = t.bar.Clear()
	})
}
