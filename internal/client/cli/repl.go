package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to. The real
// App satisfies it; tests provide a lightweight stub.
type execIface interface {
	New(ctx context.Context) error
	Resolve(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Tag(ctx context.Context, args []string) error
	AddTag(ctx context.Context, args []string) error
	Reorder(ctx context.Context, args []string) error
	Hide(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Filter(ctx context.Context, args []string) error
	More(ctx context.Context) error
	Label(ctx context.Context, args []string) error
	Unlabel(ctx context.Context, args []string) error
	Labels(ctx context.Context) error
	Sync(ctx context.Context) error
	ClearLocal(ctx context.Context) error
	ClearRemote(ctx context.Context) error
	WhoAmI(ctx context.Context) error
}

const helpText = `Commands:
  new                          start tracking an urge
  resolve <ref> <status>       resisted | gave_in | timed_out
  delete <ref>                 drop an active urge
  tag <ref> <emoji>            toggle a tag
  addtag <ref> <emoji> [label] add a custom tag
  reorder <ref> <emoji>...     reorder tags (also the default order)
  hide <ref> <emoji>...        hide tags in the picker
  (l)ist                       show active urges and a history page
  filter <all|status>          filter history
  more                         load the next history page
  label <emoji> <label>        rename a tag
  unlabel <emoji>              restore the default label
  labels                       show the tag catalog
  sync                         poll the cloud now
  clear-local | clear-remote   wipe history (admin only)
  whoami                       show the signed-in account
  exit | quit                  leave the program
<ref> is a number from the last listing or an id prefix.`

// runREPL reads commands from lines and dispatches them to a until the
// channel closes, ctx ends or the user types "exit" or "quit". Errors from
// handlers are printed and the loop continues. The prompt is only written
// when prompt is true so piped input stays quiet.
func runREPL(ctx context.Context, a execIface, statusFn func() string, lines <-chan string, w io.Writer, prompt bool) {
	for {
		if prompt {
			fmt.Fprintf(w, "uk %s> ", statusFn())
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return
		case line, ok = <-lines:
			if !ok {
				return
			}
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			fmt.Fprintln(w, helpText)
		case "new":
			err = a.New(ctx)
		case "resolve":
			err = a.Resolve(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)
		case "tag":
			err = a.Tag(ctx, args)
		case "addtag":
			err = a.AddTag(ctx, args)
		case "reorder":
			err = a.Reorder(ctx, args)
		case "hide":
			err = a.Hide(ctx, args)
		case "l", "list":
			err = a.List(ctx)
		case "filter":
			err = a.Filter(ctx, args)
		case "more":
			err = a.More(ctx)
		case "label":
			err = a.Label(ctx, args)
		case "unlabel":
			err = a.Unlabel(ctx, args)
		case "labels":
			err = a.Labels(ctx)
		case "sync":
			err = a.Sync(ctx)
		case "clear-local":
			err = a.ClearLocal(ctx)
		case "clear-remote":
			err = a.ClearRemote(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "error:", err)
		}
	}
}
