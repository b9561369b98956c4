package reconciler

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tillsync/tillsync/pkg/errors"
)

// TerminalPrompter prompts on a terminal: the message goes to Out, then the
// prompter blocks until a line is read from In. This is the only suspension
// point of a run that is not bounded by a network timeout.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NotifyAndWait implements the Prompter interface.
func (p *TerminalPrompter) NotifyAndWait(message string) error {
	if _, err := fmt.Fprintln(p.Out, message); err != nil {
		return err
	}
	if _, err := fmt.Fprint(p.Out, "..."); err != nil {
		return err
	}
	_, err := bufio.NewReader(p.In).ReadString('\n')
	if err == io.EOF {
		// Input ended without an acknowledgment: there is no operator on
		// the other end, so the run must abort rather than loop.
		return errors.ErrCanceled
	}
	return err
}
