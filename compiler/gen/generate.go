package gen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/sirupsen/logrus"
)

// Generator renders the models of a graph with Jennifer. Each model gets
// its own file holding its table and column constants and its struct, and
// tables.go lists the association tables.
type Generator struct {
	graph *Graph
}

// NewGenerator creates a generator for the given graph.
func NewGenerator(g *Graph) *Generator {
	return &Generator{graph: g}
}

// Generate writes the generated files to the target directory and records
// the graph snapshot used by Changed.
func (g *Generator) Generate(ctx context.Context) error {
	w := newWriter(g.graph.Target, g.graph.Workers)
	for _, t := range g.graph.Nodes {
		w.add(t.FileName(), func() *jen.File { return g.GenModel(t) })
	}
	w.add("tables.go", g.GenTables)
	if err := w.run(ctx); err != nil {
		return err
	}
	if err := g.graph.writeSnapshot(); err != nil {
		return err
	}
	g.graph.Log.WithFields(logrus.Fields{
		"target": g.graph.Target,
		"files":  w.metrics.FilesGenerated,
		"bytes":  w.metrics.TotalBytes,
	}).Info("relm: generated models")
	return nil
}

// Generate is the convenience function for generating the models of a graph
// when it changed since the last generation. It reports whether files were
// written.
func Generate(ctx context.Context, g *Graph) (bool, error) {
	changed, err := g.Changed()
	if err != nil {
		return false, err
	}
	if !changed {
		g.Log.WithField("target", g.Target).Debug("relm: models are up to date")
		return false, nil
	}
	return true, NewGenerator(g).Generate(ctx)
}

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.graph.Package)
	if g.graph.Header != "" {
		f.HeaderComment(g.graph.Header)
	}
	return f
}

// GenModel generates the file of a model.
func (g *Generator) GenModel(t *Type) *jen.File {
	f := g.newFile()
	tb := t.Table()

	f.Commentf("Table and column names of the %s model.", t.Name)
	f.Const().DefsFunc(func(grp *jen.Group) {
		grp.Id(t.TableConst()).Op("=").Lit(tb.Name)
		if tb.Schema != "" {
			grp.Id(t.Name + "Schema").Op("=").Lit(tb.Schema)
		}
		for _, fd := range t.Fields {
			grp.Id(fd.Const(t)).Op("=").Lit(fd.Column.Name)
		}
	})

	f.Commentf("%sColumns holds the columns of the %s table.", t.Name, tb.Name)
	f.Var().Id(t.Name + "Columns").Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
		for _, fd := range t.Fields {
			grp.Id(fd.Const(t))
		}
	})

	f.Commentf("%s is the model of the %s table.", t.Name, tb.Name)
	if c := t.Model.Comment; c != "" {
		f.Comment(c)
	}
	f.Type().Id(t.Name).StructFunc(func(grp *jen.Group) {
		for _, fd := range t.Fields {
			switch {
			case fd.Comment != "":
				grp.Comment(fd.Comment)
			case fd.Synthesized:
				grp.Commentf("%s is the foreign key column %s.", fd.StructField(), fd.Column.Name)
			}
			grp.Id(fd.StructField()).Add(fd.GoType()).Tag(tagMap(fd.StructTag()))
		}
		for _, e := range t.Edges {
			grp.Comment(e.Comment())
			grp.Id(e.StructField()).Add(e.GoType()).Tag(tagMap(e.StructTag))
		}
	})

	r := t.Receiver()
	f.Comment("TableName returns the table name of the model.")
	f.Func().Params(jen.Id(r).Op("*").Id(t.Name)).Id("TableName").Params().String().Block(
		jen.Return(jen.Id(t.TableConst())),
	)

	f.Commentf("%s is a parsable slice of %s.", t.SliceName(), t.Name)
	f.Type().Id(t.SliceName()).Index().Op("*").Id(t.Name)
	return f
}

// GenTables generates tables.go. It holds the constants of the association
// tables and the list of all tables.
func (g *Generator) GenTables() *jen.File {
	f := g.newFile()
	if len(g.graph.Tables) > 0 {
		f.Comment("Table and column names of the association tables.")
		f.Const().DefsFunc(func(grp *jen.Group) {
			for _, tb := range g.graph.Tables {
				grp.Id(tb.Ident + "Table").Op("=").Lit(tb.Name)
				for _, c := range tb.Columns {
					grp.Id(tb.Ident + "Column" + pascal(c.Name)).Op("=").Lit(c.Name)
				}
			}
		})
	}
	f.Comment("Tables holds the names of all tables.")
	f.Var().Id("Tables").Op("=").Index().String().ValuesFunc(func(grp *jen.Group) {
		for _, t := range g.graph.Nodes {
			grp.Id(t.TableConst())
		}
		for _, tb := range g.graph.Tables {
			grp.Id(tb.Ident + "Table")
		}
	})
	return f
}

// tagMap parses a struct tag into its key-value pairs.
func tagMap(tag string) map[string]string {
	m := make(map[string]string)
	for tag != "" {
		tag = strings.TrimLeft(tag, " ")
		i := strings.Index(tag, ":")
		if i <= 0 || i+1 >= len(tag) || tag[i+1] != '"' {
			break
		}
		key := tag[:i]
		quoted, err := strconv.QuotedPrefix(tag[i+1:])
		if err != nil {
			break
		}
		tag = tag[i+1+len(quoted):]
		if v, err := strconv.Unquote(quoted); err == nil {
			m[key] = v
		}
	}
	return m
}

// String implements fmt.Stringer for debugging.
func (t *Type) String() string {
	return fmt.Sprintf("%s(%s)", t.Name, t.Table().QualifiedName())
}
