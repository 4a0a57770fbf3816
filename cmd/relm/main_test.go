package main

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shop = "testdata/shop.yaml"

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	commonFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig(parseFlags(t))
		require.NoError(t, err)
		assert.Empty(t, cfg.Schema)
		assert.Equal(t, "sqlite", cfg.Dialect)
		assert.Equal(t, "models", cfg.Target)
		assert.Equal(t, "info", cfg.Logger.Level)
		assert.Equal(t, "text", cfg.Logger.Format)
	})

	t.Run("file env and flags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "relm.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
schema: [a.yaml, b.yaml]
dialect: mysql
dsn: root@/app
workers: 3
log:
  level: debug
  format: json
`), 0o644))
		t.Setenv("RELM_DSN", "env@/app")
		t.Setenv("RELM_LOG_FORMAT", "text")

		cfg, err := loadConfig(parseFlags(t, "--config", path, "--dialect", "postgres"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a.yaml", "b.yaml"}, cfg.Schema)
		assert.Equal(t, "postgres", cfg.Dialect)
		assert.Equal(t, "env@/app", cfg.DSN)
		assert.Equal(t, 3, cfg.Workers)
		assert.Equal(t, "debug", cfg.Logger.Level)
		assert.Equal(t, "text", cfg.Logger.Format)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := loadConfig(parseFlags(t, "--config", filepath.Join(t.TempDir(), "none.yaml")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	l := initLogger(&Config{Logger: LoggerConfig{Level: "warn", Format: "json"}}, &buf)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	l = initLogger(&Config{Logger: LoggerConfig{Level: "loud"}}, &buf)
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestRun_DDL(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"ddl", "--schema", shop}, &out, &errOut)
	require.NoError(t, err)

	ddl := out.String()
	for _, table := range []string{"customers", "purchase_orders", "products", "order_products"} {
		assert.Contains(t, ddl, "CREATE TABLE `"+table+"`")
	}
	assert.Contains(t, ddl, "`customer_id` integer NULL")
	assert.Contains(t, ddl, "ON DELETE CASCADE")
	assert.Contains(t, ddl, "CREATE UNIQUE INDEX `customers_email_key` ON `customers` (`email`);")
	assert.Less(t, strings.Index(ddl, "`customers`"), strings.Index(ddl, "`purchase_orders`"))
}

func TestRun_Apply(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "shop.db") + "?_pragma=foreign_keys(1)"
	args := []string{"apply", "--schema", shop, "--dsn", dsn}
	var out, errOut bytes.Buffer
	require.NoError(t, run(context.Background(), args, &out, &errOut))
	assert.Contains(t, errOut.String(), "relm: schema applied")
	// Existing tables are skipped.
	require.NoError(t, run(context.Background(), args, &out, &errOut))

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"customers", "order_products", "products", "purchase_orders"}, tables)
}

func TestRun_Validate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"validate", "--schema", shop}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "No issues found")
}

func TestRun_Gen(t *testing.T) {
	target := filepath.Join(t.TempDir(), "models")
	var errOut bytes.Buffer
	args := []string{"gen", "--schema", shop, "--target", target, "--log-level", "debug"}
	require.NoError(t, run(context.Background(), args, &bytes.Buffer{}, &errOut))
	for _, name := range []string{"customer.go", "order.go", "product.go", "tables.go"} {
		assert.FileExists(t, filepath.Join(target, name))
	}
	src, err := os.ReadFile(filepath.Join(target, "order.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package models")
	assert.Regexp(t, `OrderTable\s+= "purchase_orders"`, string(src))
	assert.Contains(t, errOut.String(), "relm: generated models")

	errOut.Reset()
	require.NoError(t, run(context.Background(), args, &bytes.Buffer{}, &errOut))
	assert.Contains(t, errOut.String(), "relm: models are up to date")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "missing command"},
		{"unknown command", []string{"migrate"}, `unknown command "migrate"`},
		{"unknown flag", []string{"ddl", "--colour"}, "unknown flag"},
		{"no schema", []string{"validate"}, "no schema files"},
		{"missing schema file", []string{"ddl", "--schema", "testdata/none.yaml"}, "no such file"},
		{"bad dialect", []string{"ddl", "--schema", shop, "--dialect", "oracle"}, `unsupported dialect "oracle"`},
		{"missing dsn", []string{"apply", "--schema", shop}, "missing dsn"},
		{"watch without schema", []string{"gen", "--watch"}, "no schema files to watch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errOut bytes.Buffer
			err := run(context.Background(), tt.args, &bytes.Buffer{}, &errOut)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_Usage(t *testing.T) {
	var errOut bytes.Buffer
	require.Error(t, run(context.Background(), nil, &bytes.Buffer{}, &errOut))
	for _, name := range commandNames {
		assert.Contains(t, errOut.String(), "  "+name+" ")
	}
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: []\n"), 0o644))

	log, hook := test.NewNullLogger()
	w, err := newWatcher([]string{path}, 10*time.Millisecond, log)
	require.NoError(t, err)
	defer w.Close()
	assert.Equal(t, "relm: watching schema", hook.LastEntry().Message)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Files next to the schema are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("models: []\n# changed\n"), 0o644))
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("schema change was not reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := newWatcher([]string{filepath.Join(t.TempDir(), "none", "models.yaml")}, time.Millisecond, log)
	require.Error(t, err)
}
