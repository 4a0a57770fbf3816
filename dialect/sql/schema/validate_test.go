package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relm/schema/field"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	result := Validate(blog())
	assert.False(t, result.HasErrors(), result.String())
	assert.False(t, result.HasWarnings(), result.String())
	assert.Equal(t, "No issues found", result.String())
}

func TestValidate_Problems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *MetaData
		opts     []ValidateOption
		errors   int
		warnings int
		breaking bool
		contains string
	}{
		{
			name: "missing_primary_key",
			build: func() *MetaData {
				md := NewMetaData()
				_ = md.AddTable(NewTable("logs").AddColumn(&Column{Name: "msg", Type: field.TypeString}))
				return md
			},
			errors:   1,
			contains: "logs: table has no primary key",
		},
		{
			name: "missing_primary_key_allowed",
			build: func() *MetaData {
				md := NewMetaData()
				_ = md.AddTable(NewTable("logs").AddColumn(&Column{Name: "msg", Type: field.TypeString}))
				return md
			},
			opts:     []ValidateOption{AllowMissingPrimaryKey()},
			warnings: 1,
		},
		{
			name: "duplicate_column",
			build: func() *MetaData {
				md := NewMetaData()
				tbl := NewTable("users").AddPrimary(&Column{Name: "id", Type: field.TypeInt})
				tbl.AddColumn(&Column{Name: "id", Type: field.TypeInt})
				_ = md.AddTable(tbl)
				return md
			},
			errors:   1,
			breaking: true,
			contains: "users.id: duplicate column name",
		},
		{
			name: "type_mismatch",
			build: func() *MetaData {
				md := blog()
				posts, _ := md.Table("posts")
				posts.ForeignKeys[0].Columns[0].Type = field.TypeString
				return md
			},
			errors:   1,
			contains: "does not match referenced column users.id",
		},
		{
			name: "type_mismatch_allowed",
			build: func() *MetaData {
				md := blog()
				posts, _ := md.Table("posts")
				posts.ForeignKeys[0].Columns[0].Type = field.TypeInt64
				return md
			},
			opts:     []ValidateOption{AllowTypeMismatch()},
			warnings: 1,
		},
		{
			name: "arity",
			build: func() *MetaData {
				md := blog()
				posts, _ := md.Table("posts")
				posts.ForeignKeys[0].RefColumns = nil
				return md
			},
			errors:   1,
			breaking: true,
			contains: "has 1 columns referencing 0 columns",
		},
		{
			name: "unknown_table",
			build: func() *MetaData {
				md := NewMetaData()
				id := &Column{Name: "id", Type: field.TypeInt}
				ext := NewTable("external").AddPrimary(id)
				ref := &Column{Name: "external_id", Type: field.TypeInt}
				tbl := NewTable("links").AddPrimary(ref)
				tbl.AddForeignKey(&ForeignKey{Symbol: "links_external", Columns: []*Column{ref}, RefTable: ext, RefColumns: []*Column{id}})
				_ = md.AddTable(tbl)
				return md
			},
			errors:   1,
			breaking: true,
			contains: `references non-existent table "external"`,
		},
		{
			name: "set_null_on_not_null",
			build: func() *MetaData {
				md := blog()
				posts, _ := md.Table("posts")
				posts.ForeignKeys[0].OnDelete = SetNull
				posts.ForeignKeys[0].Columns[0].Nullable = false
				return md
			},
			warnings: 1,
			contains: "ON DELETE SET NULL on a NOT NULL column",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := Validate(tt.build(), tt.opts...)
			require.Len(t, result.Errors, tt.errors, result.String())
			require.Len(t, result.Warnings, tt.warnings, result.String())
			assert.Equal(t, tt.breaking, result.HasBreakingChanges())
			if tt.contains != "" {
				assert.Contains(t, result.String(), tt.contains)
			}
		})
	}
}

func TestValidateTable(t *testing.T) {
	t.Parallel()

	tbl := NewTable("users")
	result := ValidateTable(tbl, AllowMissingPrimaryKey())
	assert.False(t, result.HasErrors())
	assert.True(t, result.HasWarnings())
	assert.Contains(t, result.String(), "Warnings:\n  - users: table has no primary key")
}
