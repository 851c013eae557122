// Command todoctl shows the todo board in a terminal and edits it.
//
//	todoctl [-api URL] list
//	todoctl [-api URL] add <title>
//	todoctl [-api URL] advance <id>
//	todoctl [-api URL] rm <id>
//
// Ids may be shortened to any unique prefix, as printed by list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-board/internal/board"
	"github.com/BuzzLyutic/todo-board/internal/client"
	"github.com/BuzzLyutic/todo-board/internal/config"
	"github.com/BuzzLyutic/todo-board/internal/model"
)

var errUsage = errors.New("usage: todoctl [-api URL] [-v] list | add <title> | advance <id> | rm <id>")

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("todoctl", flag.ExitOnError)
	apiURL := fs.String("api", cfg.APIURL, "todo API base URL")
	verbose := fs.Bool("v", false, "log at debug level")
	fs.Parse(os.Args[1:])

	logger := newLogger(*verbose)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(*apiURL, client.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err := run(ctx, board.New(api, logger), fs.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.DisableStacktrace = true
	if !verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run(ctx context.Context, b *board.Board, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	if err := b.Load(ctx); err != nil {
		b.Render(out)
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list", "ls":
		// nothing to change

	case "add":
		title := strings.Join(rest, " ")
		todo, err := b.Add(ctx, title)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added %s %q\n\n", todo.ID, todo.Title)

	case "advance", "mv":
		todo, err := find(b, rest)
		if err != nil {
			return err
		}
		if _, ok := todo.Status.Next(); !ok {
			return fmt.Errorf("%q is already %s", todo.Title, todo.Status)
		}
		updated, err := b.Advance(ctx, todo.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%q: %s -> %s\n\n", updated.Title, todo.Status, updated.Status)

	case "rm", "delete":
		todo, err := find(b, rest)
		if err != nil {
			return err
		}
		if err := b.Remove(ctx, todo.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %q\n\n", todo.Title)

	default:
		return errUsage
	}

	return b.Render(out)
}

func find(b *board.Board, args []string) (model.Todo, error) {
	if len(args) != 1 {
		return model.Todo{}, errUsage
	}
	return b.Find(args[0])
}
