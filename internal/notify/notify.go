// Package notify is the transient notification surface: one line per event,
// success in green and failures in red.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("notify")

// Notifier shows short lived messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string, err error)
}

// Console writes notifications to a terminal.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	ok  *color.Color
	bad *color.Color
}

func NewConsole(out io.Writer) *Console {
	return &Console{
		out: out,
		ok:  color.New(color.FgGreen),
		bad: color.New(color.FgRed, color.Bold),
	}
}

func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.ok.Fprintf(c.out, "✓ %s\n", msg)
}

// Error shows msg and logs err with it. Errors are never dropped silently.
func (c *Console) Error(msg string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Errorf("%s: %v", msg, err)
		_, _ = c.bad.Fprintf(c.out, "✗ %s: %v\n", msg, err)
		return
	}
	_, _ = c.bad.Fprintf(c.out, "✗ %s\n", msg)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Success(string)      {}
func (Discard) Error(string, error) {}

var _ Notifier = (*Console)(nil)
var _ Notifier = Discard{}

// Sprint formats a notification without color, used for logs and tests.
func Sprint(msg string, err error) string {
	if err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, err)
}
