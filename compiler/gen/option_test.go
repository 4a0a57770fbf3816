package gen

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithHeader(t *testing.T) {
	t.Run("sets header", func(t *testing.T) {
		c := &Config{}
		err := WithHeader("// Custom header")(c)

		require.NoError(t, err)
		assert.Equal(t, "// Custom header", c.Header)
	})

	t.Run("empty header is allowed", func(t *testing.T) {
		c := &Config{Header: "existing"}
		err := WithHeader("")(c)

		require.NoError(t, err)
		assert.Equal(t, "", c.Header)
	})
}

func TestWithPackage(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithPackage("models")(c))
	assert.Equal(t, "models", c.Package)

	for _, pkg := range []string{"", "github.com/org/models", "my-models", "1models"} {
		err := WithPackage(pkg)(c)
		require.Error(t, err, pkg)
		assert.True(t, IsConfigError(err))
	}
}

func TestWithWorkers(t *testing.T) {
	c := &Config{}
	require.NoError(t, WithWorkers(3)(c))
	assert.Equal(t, 3, c.Workers)

	err := WithWorkers(0)(c)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingConfig)
}

func TestWithLogger(t *testing.T) {
	c := &Config{}
	l := logrus.New()
	require.NoError(t, WithLogger(l)(c))
	assert.Same(t, l, c.Log)
	require.Error(t, WithLogger(nil)(c))
}

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "models")
		c, err := NewConfig(WithTarget(dir))
		require.NoError(t, err)
		assert.Equal(t, dir, c.Target)
		assert.Equal(t, "models", c.Package)
		assert.Equal(t, DefaultHeader, c.Header)
		assert.Positive(t, c.Workers)
		assert.NotNil(t, c.Log)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := NewConfig()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMissingConfig)

		_, err = NewConfig(WithTarget(""))
		require.Error(t, err)
	})

	t.Run("package not inferable", func(t *testing.T) {
		_, err := NewConfig(WithTarget(filepath.Join(t.TempDir(), "my-models")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot infer package name")

		c, err := NewConfig(WithTarget(filepath.Join(t.TempDir(), "my-models")), WithPackage("models"))
		require.NoError(t, err)
		assert.Equal(t, "models", c.Package)
	})

	t.Run("first error wins", func(t *testing.T) {
		_, err := NewConfig(WithTarget("models"), WithWorkers(-1), WithPackage(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Workers")
	})
}

func TestMustNewConfig(t *testing.T) {
	assert.Panics(t, func() { MustNewConfig() })
	assert.NotPanics(t, func() { MustNewConfig(WithTarget("models")) })
}
