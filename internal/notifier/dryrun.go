package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DryRunNotifier prints what would be posted without sending anything
type DryRunNotifier struct {
	out   io.Writer
	count int
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout when nil)
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Post prints the payload
func (n *DryRunNotifier) Post(ctx context.Context, p *Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.count++
	if _, err := fmt.Fprintf(n.out, "--- Notification %d ---\n%s\n", n.count, p.Text()); err != nil {
		return fmt.Errorf("writing dry-run output: %w", err)
	}
	return nil
}

// Count returns the number of payloads printed so far
func (n *DryRunNotifier) Count() int {
	return n.count
}
