// Command relm loads YAML model declarations, configures their
// relationships and renders the result as DDL, live tables or Go models.
//
//	relm ddl --schema models.yaml --dialect postgres
//	relm apply --schema models.yaml --dialect sqlite --dsn file:app.db
//	relm gen --schema models.yaml --target ./models --watch
//	relm validate --schema models.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "relm:", err)
		}
		stop()
		os.Exit(1)
	}
}

// run executes the command named by the first argument.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return errors.New("missing command")
	}
	cmd, ok := commands[args[0]]
	if !ok {
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
	fs := pflag.NewFlagSet("relm "+cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	commonFlags(fs)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}
	e := &env{
		cfg:   cfg,
		flags: fs,
		log:   initLogger(cfg, stderr),
		out:   stdout,
	}
	return cmd.run(ctx, e)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: relm <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range commandNames {
		fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].usage)
	}
}
