package account

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-print"
)

// ConsoleNotifier writes notifications as JSON. Useful for local
// development and the CLI.
type ConsoleNotifier struct {
	Out io.Writer
}

var _ Notifier = ConsoleNotifier{}

// Notify implements Notifier.
func (c ConsoleNotifier) Notify(_ context.Context, n Notification) error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, print.MaybePrettyJSON(n))
	return err
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error {
	return nil
}

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
