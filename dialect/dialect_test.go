package dialect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/relm/dialect"
)

func TestValid(t *testing.T) {
	for _, name := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		assert.True(t, dialect.Valid(name), name)
		assert.NoError(t, dialect.Check(name))
	}
	assert.False(t, dialect.Valid("oracle"))
	assert.EqualError(t, dialect.Check("oracle"), `dialect: unsupported dialect "oracle"`)
}
