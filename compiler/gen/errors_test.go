package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name     string
		err      error
		want     string
		sentinel error
		is       func(error) bool
	}{
		{
			name:     "Schema",
			err:      NewSchemaError("Post", "author_id", "duplicate Go field AuthorID", nil),
			want:     "relm: schema error on type Post field author_id: duplicate Go field AuthorID",
			sentinel: ErrInvalidSchema,
			is:       IsSchemaError,
		},
		{
			name:     "SchemaTypeOnly",
			err:      &SchemaError{Type: "Post"},
			want:     "relm: schema error on type Post",
			sentinel: ErrInvalidSchema,
			is:       IsSchemaError,
		},
		{
			name:     "Config",
			err:      NewConfigError("Workers", -1, "must be positive"),
			want:     `relm: config error for "Workers" (value: -1): must be positive`,
			sentinel: ErrMissingConfig,
			is:       IsConfigError,
		},
		{
			name:     "ConfigWithoutValue",
			err:      NewConfigError("Target", nil, "missing target directory"),
			want:     `relm: config error for "Target": missing target directory`,
			sentinel: ErrMissingConfig,
			is:       IsConfigError,
		},
		{
			name:     "Generation",
			err:      NewGenerationError("write", "post.go", "", cause),
			want:     "relm: generation error in phase write (file: post.go): disk full",
			sentinel: ErrGenerationFailed,
			is:       IsGenerationError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.True(t, tt.is(tt.err))
			assert.True(t, tt.is(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.is(cause))
		})
	}
	assert.ErrorIs(t, NewGenerationError("write", "post.go", "", cause), cause)
}
