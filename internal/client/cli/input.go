package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// isInteractive is a test seam for term.IsTerminal on stdin.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readLines scans r in the background and delivers each line on the
// returned channel, which is closed on EOF, read error or when ctx ends.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
