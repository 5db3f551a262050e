// Package console is the terminal presentation of the user screen: a line-oriented
// REPL over screen.Controller, a table renderer and a printing notifier.
package console

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"go.uber.org/zap"

	domain "user-crud-console/internal/domain/user"
	"user-crud-console/internal/usecase/screen"
	"user-crud-console/internal/usecase/userform"
	apperrors "user-crud-console/pkg/errors"
)

// Screen is the intent surface the REPL drives. *screen.Controller implements it.
type Screen interface {
	Reload(ctx context.Context) error
	Add()
	Edit(id int64) error
	SetField(path, value string) error
	Cancel()
	Submit(ctx context.Context) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	Search(term string)
	View() screen.View
}

const prompt = "users> "

const helpText = `Commands:
  list                 show the (filtered) user table
  search [term]        filter by name; no term clears the filter
  add                  open an empty form
  edit <id>            open the form for a user
  set <field> <value>  change a form field (%s)
  show                 show the open form
  submit               validate and save the form
  cancel               close the form without saving
  delete <id>          delete a user
  reload               fetch the list again
  help                 show this help
  exit                 leave the console`

// REPL reads commands line by line and renders the screen after each one.
// Remote intents (submit, delete, reload) run off the input loop by default and
// print their outcome when they settle.
type REPL struct {
	screen     Screen
	in         io.Reader
	out        *SyncWriter
	log        *zap.Logger
	prompt     bool
	background bool

	pending    sync.WaitGroup
	submitting atomic.Bool
}

// Option configures a REPL.
type Option func(*REPL)

// WithPrompt turns the input prompt on or off. It is off by default so piped input
// produces clean output.
func WithPrompt(on bool) Option {
	return func(r *REPL) { r.prompt = on }
}

// WithBackground controls whether remote intents run off the input loop. It is on by
// default. With it off every command completes before the next line is read, which
// keeps scripted output in input order.
func WithBackground(on bool) Option {
	return func(r *REPL) { r.background = on }
}

// NewREPL creates a REPL reading from in and writing to out. Pass the same
// *SyncWriter the Notifier writes to.
func NewREPL(s Screen, in io.Reader, out io.Writer, log *zap.Logger, opts ...Option) *REPL {
	r := &REPL{screen: s, in: in, out: NewSyncWriter(out), log: log, background: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes commands until exit, end of input or ctx cancellation. Lines are read
// on a separate goroutine so cancellation is noticed while waiting for input. Run
// returns once every background intent has settled.
func (r *REPL) Run(ctx context.Context) error {
	defer r.Wait()

	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- scanner.Err()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		if r.prompt {
			r.write([]byte(prompt))
		}
		select {
		case <-ctx.Done():
			if r.prompt {
				r.write([]byte("\n"))
			}
			return nil
		case err := <-done:
			return err
		case line := <-lines:
			if !r.Exec(ctx, line) {
				return nil
			}
		}
	}
}

// Wait blocks until every background intent has settled.
func (r *REPL) Wait() {
	r.pending.Wait()
}

// Exec runs one command line and reports whether the REPL should keep going.
func (r *REPL) Exec(ctx context.Context, line string) bool {
	var buf bytes.Buffer
	defer func() { r.write(buf.Bytes()) }()
	return r.exec(ctx, &buf, line)
}

func (r *REPL) exec(ctx context.Context, w io.Writer, line string) bool {
	cmd, rest := splitArg(line)
	if cmd == "" {
		return true
	}
	r.log.Debug("console command", zap.String("command", cmd))

	switch strings.ToLower(cmd) {
	case "help", "?":
		fmt.Fprintf(w, helpText+"\n", strings.Join(FieldPaths(), ", "))

	case "l", "list":
		r.printList(w)

	case "search":
		r.screen.Search(rest)
		r.printList(w)

	case "add":
		r.screen.Add()
		RenderForm(w, r.screen.View())

	case "edit":
		id, ok := parseID(w, rest)
		if !ok {
			break
		}
		if err := r.screen.Edit(id); err != nil {
			printError(w, err)
			break
		}
		RenderForm(w, r.screen.View())

	case "set":
		field, value := splitArg(rest)
		if field == "" {
			fmt.Fprintln(w, "usage: set <field> <value>")
			break
		}
		if err := r.screen.SetField(field, value); err != nil {
			printError(w, err)
			break
		}
		RenderForm(w, r.screen.View())

	case "show":
		RenderForm(w, r.screen.View())

	case "submit":
		if !r.submitting.CompareAndSwap(false, true) {
			fmt.Fprintln(w, "A submit is already in progress.")
			break
		}
		r.dispatch(w, "Saving...", func(w io.Writer) {
			defer r.submitting.Store(false)
			r.submit(ctx, w)
		})

	case "delete", "rm":
		id, ok := parseID(w, rest)
		if !ok {
			break
		}
		r.dispatch(w, fmt.Sprintf("Deleting user %d...", id), func(w io.Writer) {
			// failures were already notified by the store
			if err := r.screen.Delete(ctx, id); err == nil {
				r.printList(w)
			}
		})

	case "reload":
		r.dispatch(w, "Reloading...", func(w io.Writer) {
			if err := r.screen.Reload(ctx); err == nil {
				r.printList(w)
			}
		})

	case "exit", "quit":
		fmt.Fprintln(w, "Bye!")
		return false

	default:
		fmt.Fprintf(w, "Unknown command: %s (try 'help')\n", cmd)
	}
	return true
}

// dispatch runs fn inline, or on its own goroutine when background is on. In the
// background case what fn writes is printed in one piece once it returns.
func (r *REPL) dispatch(w io.Writer, pending string, fn func(w io.Writer)) {
	if !r.background {
		fn(w)
		return
	}

	fmt.Fprintln(w, pending)
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()
		var buf bytes.Buffer
		fn(&buf)
		if buf.Len() > 0 && r.prompt {
			buf.WriteString(prompt)
		}
		r.write(buf.Bytes())
	}()
}

func (r *REPL) submit(ctx context.Context, w io.Writer) {
	_, err := r.screen.Submit(ctx)

	var verrs apperrors.ValidationErrors
	switch {
	case err == nil, errors.Is(err, apperrors.ErrStale):
		r.printList(w)
	case errors.As(err, &verrs):
		fmt.Fprintln(w, "Please fix the highlighted fields:")
		RenderForm(w, r.screen.View())
	case errors.Is(err, userform.ErrNotOpen):
		printError(w, err)
	default:
		// remote failure: notified by the store, the form stays open
		r.log.Debug("submit failed", zap.Error(err))
	}
}

func (r *REPL) write(p []byte) {
	if len(p) == 0 {
		return
	}
	if _, err := r.out.Write(p); err != nil {
		r.log.Warn("failed to write console output", zap.Error(err))
	}
}

func (r *REPL) printList(w io.Writer) {
	v := r.screen.View()
	if v.SearchTerm != "" {
		fmt.Fprintf(w, "Search: %q (%d shown)\n", v.SearchTerm, len(v.VisibleUsers))
	}
	RenderTable(w, v.VisibleUsers)
}

func parseID(w io.Writer, arg string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "error: %q is not a valid user id\n", arg)
		return 0, false
	}
	return id, true
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}

// splitArg splits s into its first word and the trimmed remainder.
func splitArg(s string) (head, tail string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
