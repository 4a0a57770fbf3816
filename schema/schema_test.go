package schema_test

import (
	"testing"

	"github.com/syssam/relm/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentAnnotation(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		ann := &schema.CommentAnnotation{Text: "association between posts and tags"}
		assert.Equal(t, "Comment", ann.Name())
	})

	t.Run("Comment_constructor", func(t *testing.T) {
		ann := schema.Comment("User owns posts.")
		require.NotNil(t, ann)
		assert.Equal(t, "User owns posts.", ann.Text)
	})
}

// tagMerger implements both Annotation and Merger.
type tagMerger struct {
	tags []string
}

func (*tagMerger) Name() string { return "Tags" }

func (m *tagMerger) Merge(other schema.Annotation) schema.Annotation {
	if o, ok := other.(*tagMerger); ok {
		return &tagMerger{tags: append(append([]string(nil), m.tags...), o.tags...)}
	}
	return m
}

func TestMergerInterface(t *testing.T) {
	t.Run("merge_same_type", func(t *testing.T) {
		merged := (&tagMerger{tags: []string{"a"}}).Merge(&tagMerger{tags: []string{"b"}})
		mm, ok := merged.(*tagMerger)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, mm.tags)
	})

	t.Run("merge_different_type", func(t *testing.T) {
		m := &tagMerger{tags: []string{"a"}}
		assert.Equal(t, m, m.Merge(schema.Comment("x")))
	})

	var _ schema.Merger = (*tagMerger)(nil)
}
