package notifier

import (
	"fmt"
	"io"

	"github.com/pfrederiksen/sz-deals/internal/report"
)

// DryRunNotifier prints the report instead of sending it
type DryRunNotifier struct {
	out       io.Writer
	recipient string
}

// NewDryRunNotifier creates a new dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer, recipient string) *DryRunNotifier {
	return &DryRunNotifier{out: out, recipient: recipient}
}

// Notify prints the mail that would be sent
func (n *DryRunNotifier) Notify(rep *report.Report) error {
	fmt.Fprintf(n.out, "--- Mail to %s ---\n", n.recipient)
	fmt.Fprintf(n.out, "Subject: %s\n", rep.Subject)
	fmt.Fprintf(n.out, "Attachment: %s (%d bytes)\n\n", rep.Filename, len(rep.Attachment))
	fmt.Fprintln(n.out, rep.Body)
	return nil
}
