package cli

import (
	"fmt"
	"io"

	"github.com/arklim/riskdash-client/internal/core/port"
)

// terminalAlerter prints transient alerts to the terminal, the CLI's stand-in
// for the dashboard's toast surface.
type terminalAlerter struct {
	out io.Writer
}

var _ port.Alerter = (*terminalAlerter)(nil)

func (a *terminalAlerter) Urgent(title, message string) {
	fmt.Fprintf(a.out, "!! %s - %s\n", title, message)
}

func (a *terminalAlerter) Notice(title, message string) {
	fmt.Fprintf(a.out, " ! %s - %s\n", title, message)
}

func (a *terminalAlerter) Warn(title, message string) {
	fmt.Fprintf(a.out, " ~ %s - %s\n", title, message)
}
