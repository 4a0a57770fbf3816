package gen

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	dbschema "github.com/syssam/relm/dialect/sql/schema"
)

// SnapshotFile is the file in the target directory that records the graph
// of the last generation.
const SnapshotFile = ".relm.snapshot"

// snapshot captures everything the generated files depend on.
type snapshot struct {
	Package string          `msgpack:"package"`
	Header  string          `msgpack:"header"`
	Tables  []byte          `msgpack:"tables"`
	Models  []modelSnapshot `msgpack:"models"`
}

type modelSnapshot struct {
	Name   string          `msgpack:"name"`
	Fields []fieldSnapshot `msgpack:"fields"`
	Edges  []edgeSnapshot  `msgpack:"edges"`
}

type fieldSnapshot struct {
	Name     string `msgpack:"name"`
	Column   string `msgpack:"column"`
	Type     string `msgpack:"type"`
	Nillable bool   `msgpack:"nillable,omitempty"`
	Comment  string `msgpack:"comment,omitempty"`
}

type edgeSnapshot struct {
	Name    string `msgpack:"name"`
	Target  string `msgpack:"target"`
	Unique  bool   `msgpack:"unique,omitempty"`
	Tag     string `msgpack:"tag,omitempty"`
	Comment string `msgpack:"comment,omitempty"`
}

// Snapshot returns the msgpack encoding of the graph.
func (g *Graph) Snapshot() ([]byte, error) {
	tables, err := dbschema.EncodeSnapshot(g.md)
	if err != nil {
		return nil, err
	}
	s := snapshot{Package: g.Package, Header: g.Header, Tables: tables}
	for _, t := range g.Nodes {
		ms := modelSnapshot{Name: t.Name}
		for _, f := range t.Fields {
			ms.Fields = append(ms.Fields, fieldSnapshot{
				Name:     f.Name,
				Column:   f.Column.Name,
				Type:     f.Type.String(),
				Nillable: f.Nillable,
				Comment:  f.Comment,
			})
		}
		for _, e := range t.Edges {
			ms.Edges = append(ms.Edges, edgeSnapshot{
				Name:    e.Name,
				Target:  e.Type.Name,
				Unique:  e.Unique,
				Tag:     e.StructTag,
				Comment: e.Rel.Comment,
			})
		}
		s.Models = append(s.Models, ms)
	}
	b, err := msgpack.Marshal(s)
	if err != nil {
		return nil, NewGenerationError("snapshot", SnapshotFile, "encode", err)
	}
	return b, nil
}

// Changed reports if the graph differs from the one recorded by the last
// generation in the target directory.
func (g *Graph) Changed() (bool, error) {
	prev, err := os.ReadFile(filepath.Join(g.Target, SnapshotFile))
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, NewGenerationError("snapshot", SnapshotFile, "read", err)
	}
	curr, err := g.Snapshot()
	if err != nil {
		return false, err
	}
	return !bytes.Equal(prev, curr), nil
}

func (g *Graph) writeSnapshot() error {
	b, err := g.Snapshot()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(g.Target, SnapshotFile), b, 0o644); err != nil {
		return NewGenerationError("snapshot", SnapshotFile, "write", err)
	}
	return nil
}
