// Package notify delivers user-facing notifications. The CLI variant
// writes them to a terminal stream.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

type WriterNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ ports.Notifier = (*WriterNotifier)(nil)

func NewWriterNotifier(out io.Writer) *WriterNotifier {
	return &WriterNotifier{out: out}
}

// Notify never fails the caller; a broken stream drops the message.
func (n *WriterNotifier) Notify(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, _ = fmt.Fprintf(n.out, "\n%s: %s\n", title, body)
}
