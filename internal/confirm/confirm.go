package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirmer is a blocking yes/no decision. Destructive actions go through
// it before any request is sent.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Terminal asks on one stream and reads the answer from another.
// Anything other than y/yes declines.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out}
}

func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(t.Out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// Fixed always answers the same way. For tests and forced flows.
type Fixed bool

func (f Fixed) Confirm(ctx context.Context, prompt string) (bool, error) {
	return bool(f), nil
}
