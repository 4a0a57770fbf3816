package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/syssam/relm"
	"github.com/syssam/relm/compiler/gen"
	"github.com/syssam/relm/compiler/load"
	"github.com/syssam/relm/dialect"
	"github.com/syssam/relm/dialect/sql"
	dbschema "github.com/syssam/relm/dialect/sql/schema"
)

// env is passed to the commands.
type env struct {
	cfg   *Config
	flags *pflag.FlagSet
	log   *logrus.Logger
	out   io.Writer
}

type command struct {
	name  string
	usage string
	flags func(*pflag.FlagSet)
	run   func(context.Context, *env) error
}

var (
	commandNames = []string{"ddl", "apply", "gen", "validate"}
	commands     = map[string]*command{
		"ddl": {
			name:  "ddl",
			usage: "print the CREATE statements of the declared models",
			run:   ddlCmd,
		},
		"apply": {
			name:  "apply",
			usage: "create the missing tables in the database",
			run:   applyCmd,
		},
		"gen": {
			name:  "gen",
			usage: "generate Go models",
			flags: func(fs *pflag.FlagSet) {
				fs.Bool("watch", false, "regenerate when a schema file changes")
				fs.Duration("debounce", 500*time.Millisecond, "delay between a change and the regeneration")
			},
			run: genCmd,
		},
		"validate": {
			name:  "validate",
			usage: "check the integrity of the synthesized tables",
			run:   validateCmd,
		},
	}
)

// registry loads the schema files and configures their models.
func (e *env) registry() (*relm.Registry, error) {
	if len(e.cfg.Schema) == 0 {
		return nil, errors.New("no schema files, set --schema or schema in relm.yaml")
	}
	schemas, err := load.Load(e.cfg.Schema...)
	if err != nil {
		return nil, err
	}
	reg := relm.NewRegistry(relm.WithLogger(e.log))
	if err := reg.Register(schemas...); err != nil {
		return nil, err
	}
	if err := reg.Configure(); err != nil {
		return nil, err
	}
	e.log.WithField("models", len(reg.Models())).Debug("relm: registry configured")
	return reg, nil
}

func ddlCmd(ctx context.Context, e *env) error {
	if err := dialect.Check(e.cfg.Dialect); err != nil {
		return err
	}
	reg, err := e.registry()
	if err != nil {
		return err
	}
	stmts, err := dbschema.DDL(ctx, e.cfg.Dialect, reg.MetaData())
	if err != nil {
		return err
	}
	for _, s := range stmts {
		if _, err := fmt.Fprintf(e.out, "%s;\n", s); err != nil {
			return err
		}
	}
	return nil
}

func applyCmd(ctx context.Context, e *env) error {
	if e.cfg.DSN == "" {
		return errors.New("missing dsn")
	}
	reg, err := e.registry()
	if err != nil {
		return err
	}
	drv, err := sql.Open(e.cfg.Dialect, e.cfg.DSN)
	if err != nil {
		return err
	}
	defer drv.Close()
	if err := drv.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := dbschema.Create(ctx, drv, reg.MetaData()); err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"dialect": e.cfg.Dialect,
		"tables":  reg.MetaData().Len(),
	}).Info("relm: schema applied")
	return nil
}

func validateCmd(_ context.Context, e *env) error {
	reg, err := e.registry()
	if err != nil {
		return err
	}
	res := dbschema.Validate(reg.MetaData())
	if _, err := fmt.Fprintln(e.out, res.String()); err != nil {
		return err
	}
	if res.HasErrors() {
		return fmt.Errorf("validation failed with %d errors", len(res.Errors))
	}
	return nil
}

func genCmd(ctx context.Context, e *env) error {
	watch, _ := e.flags.GetBool("watch")
	if !watch {
		return e.generate(ctx)
	}
	if len(e.cfg.Schema) == 0 {
		return errors.New("no schema files to watch")
	}
	debounce, _ := e.flags.GetDuration("debounce")
	w, err := newWatcher(e.cfg.Schema, debounce, e.log)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := e.generate(ctx); err != nil {
		e.log.WithError(err).Error("relm: generate models")
	}
	err = w.Watch(ctx, func() {
		if err := e.generate(ctx); err != nil {
			e.log.WithError(err).Error("relm: generate models")
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (e *env) generate(ctx context.Context) error {
	reg, err := e.registry()
	if err != nil {
		return err
	}
	opts := []gen.Option{gen.WithTarget(e.cfg.Target), gen.WithLogger(e.log)}
	if e.cfg.Package != "" {
		opts = append(opts, gen.WithPackage(e.cfg.Package))
	}
	if e.cfg.Workers > 0 {
		opts = append(opts, gen.WithWorkers(e.cfg.Workers))
	}
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return err
	}
	graph, err := gen.NewGraph(cfg, reg)
	if err != nil {
		return err
	}
	_, err = gen.Generate(ctx, graph)
	return err
}
