package edge

import "github.com/syssam/relm/schema"

// Annotation configures how a relationship is rendered by the model
// generator. It is usually set with the builder:
//
//	edge.ManyToMany("tags", Tag.Type).
//		Table("post_tags").
//		StructTag(`yaml:"tags"`)
//
// A tag without a json key gets the default `json:"<name>,omitempty"`
// prepended.
type Annotation struct {
	StructTag string
}

// Name describes the annotation name.
func (Annotation) Name() string {
	return "Relationship"
}

// Merge implements the schema.Merger interface. Later struct tags win.
func (a Annotation) Merge(other schema.Annotation) schema.Annotation {
	var ant Annotation
	switch other := other.(type) {
	case Annotation:
		ant = other
	case *Annotation:
		if other != nil {
			ant = *other
		}
	default:
		return a
	}
	if ant.StructTag != "" {
		a.StructTag = ant.StructTag
	}
	return a
}

// Lookup merges the relationship annotations of a descriptor, in order.
// It returns false if there are none.
func Lookup(annotations []schema.Annotation) (Annotation, bool) {
	var (
		ant   Annotation
		found bool
	)
	for _, at := range annotations {
		switch at.(type) {
		case Annotation, *Annotation:
			ant, found = ant.Merge(at).(Annotation), true
		}
	}
	return ant, found
}

var (
	_ schema.Annotation = (*Annotation)(nil)
	_ schema.Merger     = (*Annotation)(nil)
)
