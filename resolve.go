package relm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/syssam/relm/dialect/sql/schema"
	"github.com/syssam/relm/schema/edge"
)

func init() {
	DeclareFirst.Connect(resolveRelationships)
	DeclareLast.Connect(linkBackPopulates)
}

// resolveRelationships synthesizes the foreign keys and association tables
// implied by the pending relationships of m. Relationships that fail to
// resolve stay pending. Relationships naming a secondary table are left to
// resolveSecondaryTables.
func resolveRelationships(m *Model) error {
	return resolvePending(m, func(rel *Relationship) bool { return !namesSecondary(rel) })
}

// resolveSecondaryTables binds the secondary tables of the pending
// many-to-many relationships of m. Configure calls it once DeclareFirst was
// sent for every model, so that the association tables generated by other
// models are part of the metadata regardless of the registration order.
func resolveSecondaryTables(m *Model) error {
	return resolvePending(m, namesSecondary)
}

func resolvePending(m *Model, match func(*Relationship) bool) error {
	var (
		errs    []error
		pending []*Relationship
	)
	for _, rel := range m.pending {
		if !match(rel) {
			pending = append(pending, rel)
			continue
		}
		if err := resolve(rel); err != nil {
			errs = append(errs, err)
			pending = append(pending, rel)
		}
	}
	m.pending = pending
	return NewAggregateError(errs...)
}

func namesSecondary(rel *Relationship) bool {
	return rel.Direction == edge.M2M && rel.Descriptor != nil && rel.Descriptor.Secondary != ""
}

func resolve(rel *Relationship) error {
	owner := rel.Owner
	target, ok := owner.registry.Model(rel.TargetName)
	if !ok {
		return &UnknownModelError{Name: rel.TargetName, Model: owner.Name, Relation: rel.Key}
	}
	rel.Target = target
	if rel.Backref != "" && rel.Reverse == nil && target.HasProperty(rel.Backref) {
		return NewArgumentError(owner.Name, rel.Key, "error creating backref %q: property of that name exists on model %s", rel.Backref, target.Name)
	}
	var err error
	switch rel.Direction {
	case edge.O2M:
		err = addForeignKeys(target, owner, rel)
	case edge.M2O:
		err = addForeignKeys(owner, target, rel)
	case edge.M2M:
		err = addAssociationTable(owner, target, rel)
	default:
		err = NewArgumentError(owner.Name, rel.Key, "unknown relationship direction %s", rel.Direction)
	}
	if err != nil {
		return err
	}
	return addBackref(rel)
}

// addForeignKeys adds to child the columns referencing the primary key of
// parent. Existing columns are reused, and the constraint is only added if
// a column was created.
func addForeignKeys(child, parent *Model, rel *Relationship) error {
	d := rel.Descriptor
	prefix, nullable := "_", true
	if d.FK.Prefix != nil {
		prefix = *d.FK.Prefix
	}
	if d.FK.Nullable != nil {
		nullable = *d.FK.Nullable
	}
	key := d.FK.Key
	if key == "" {
		switch {
		case rel.Direction == edge.M2O:
			key = strings.ToLower(rel.Key)
		case rel.Backref != "":
			key = strings.ToLower(rel.Backref)
		default:
			key = strings.ToLower(parent.Name)
		}
	}
	pks := parent.Table.PrimaryKey
	if len(pks) == 0 {
		return NewArgumentError(parent.Name, "", "table %q has no primary key", parent.Table.Name)
	}
	log := child.registry.log.WithFields(logrus.Fields{
		"model":    rel.Owner.Name,
		"relation": rel.Key,
		"table":    child.Table.Name,
	})
	var (
		columns = make([]*schema.Column, 0, len(pks))
		added   []*Property
	)
	// Columns are only added once every primary key column maps to one.
	for _, pk := range pks {
		pkProp, ok := parent.PropertyByColumn(pk)
		if !ok {
			return NewArgumentError(parent.Name, "", "primary key column %q is not mapped", pk.Name)
		}
		name := joinNonEmpty("_", key, pk.Name)
		attr := prefix + joinNonEmpty("_", key, pkProp.Key)
		c, ok := child.Table.Column(name)
		switch {
		case !ok && !child.HasProperty(attr):
			c = &schema.Column{
				Name:       name,
				Type:       pk.Type,
				SchemaType: pk.SchemaType,
				Size:       pk.Size,
				Nullable:   nullable,
			}
			added = append(added, &Property{Key: attr, Column: c, Info: pkProp.Info, Synthesized: true})
		case !ok:
			return NewArgumentError(child.Name, attr, "property exists but table %q has no column %q", child.Table.Name, name)
		}
		columns = append(columns, c)
	}
	for _, p := range added {
		if err := child.addProperty(p); err != nil {
			return err
		}
		child.Table.AddColumn(p.Column)
		log.WithField("column", p.Column.Name).Debug("relm: added foreign key column")
	}
	rel.ForeignKeys = columns
	if len(added) == 0 {
		return nil
	}
	onDelete, onUpdate := d.FKActions()
	fk := &schema.ForeignKey{
		Symbol:     d.FK.Name,
		Columns:    columns,
		RefTable:   parent.Table,
		RefColumns: slices.Clone(pks),
		OnDelete:   schema.ReferenceOption(onDelete),
		OnUpdate:   schema.ReferenceOption(onUpdate),
	}
	if fk.Symbol == "" {
		fk.Symbol = child.Table.Name + "_" + columns[0].Name
	}
	child.Table.AddForeignKey(fk)
	log.WithField("constraint", fk.Symbol).Debug("relm: added foreign key constraint")
	return nil
}

// addAssociationTable sets the association table of a many-to-many
// relationship, creating it in the owner schema when it does not exist.
func addAssociationTable(owner, target *Model, rel *Relationship) error {
	if rel.Secondary != nil {
		return nil
	}
	var (
		d   = rel.Descriptor
		md  = owner.registry.md
		log = owner.registry.log.WithFields(logrus.Fields{
			"model":    owner.Name,
			"relation": rel.Key,
		})
	)
	if d.Secondary != "" {
		t, ok := md.Lookup(owner.Table.Schema, d.Secondary)
		if !ok {
			t, ok = md.Table(d.Secondary)
		}
		if !ok {
			return &UnknownTableError{Table: d.Secondary, Model: owner.Name, Relation: rel.Key}
		}
		rel.Secondary = t
		return nil
	}
	if t, ok := md.Lookup(owner.Table.Schema, d.Table); ok {
		rel.Secondary = t
		log.WithField("table", t.QualifiedName()).Debug("relm: reused association table")
		return nil
	}
	t := schema.NewTable(d.Table).SetSchema(owner.Table.Schema).SetComment(d.TableComment)
	t.Association = true
	ownerCols, err := associationColumns(t, owner, strings.ToLower(owner.Table.Name))
	if err != nil {
		return err
	}
	// Self-referential tables name the target side after the relationship.
	refKey := strings.ToLower(target.Table.Name)
	if owner == target {
		refKey = strings.ToLower(rel.Key)
	}
	targetCols, err := associationColumns(t, target, refKey)
	if err != nil {
		return err
	}
	onDelete, onUpdate := d.FKActions()
	for _, ref := range []struct {
		columns []*schema.Column
		parent  *Model
	}{
		{ownerCols, owner},
		{targetCols, target},
	} {
		symbol := t.Name + "_" + ref.columns[0].Name
		if d.FK.Name != "" {
			symbol = d.FK.Name + "_" + ref.columns[0].Name
		}
		t.AddForeignKey(&schema.ForeignKey{
			Symbol:     symbol,
			Columns:    ref.columns,
			RefTable:   ref.parent.Table,
			RefColumns: slices.Clone(ref.parent.Table.PrimaryKey),
			OnDelete:   schema.ReferenceOption(onDelete),
			OnUpdate:   schema.ReferenceOption(onUpdate),
		})
	}
	if err := md.AddTable(t); err != nil {
		return wrapArgumentError(owner.Name, rel.Key, err)
	}
	rel.Secondary = t
	log.WithField("table", t.QualifiedName()).Debug("relm: added association table")
	return nil
}

func associationColumns(t *schema.Table, m *Model, key string) ([]*schema.Column, error) {
	pks := m.Table.PrimaryKey
	if len(pks) == 0 {
		return nil, NewArgumentError(m.Name, "", "table %q has no primary key", m.Table.Name)
	}
	columns := make([]*schema.Column, 0, len(pks))
	for _, pk := range pks {
		name := joinNonEmpty("_", key, pk.Name)
		if t.HasColumn(name) {
			return nil, NewArgumentError(m.Name, "", "association table %q has duplicate column %q", t.Name, name)
		}
		c := &schema.Column{
			Name:       name,
			Type:       pk.Type,
			SchemaType: pk.SchemaType,
			Size:       pk.Size,
		}
		t.AddPrimary(c)
		columns = append(columns, c)
	}
	return columns, nil
}

// addBackref creates the reverse relationship of rel on its target.
func addBackref(rel *Relationship) error {
	if rel.Backref == "" || rel.Reverse != nil {
		return nil
	}
	rev := &Relationship{
		Key:           rel.Backref,
		Direction:     rel.Direction.Reverse(),
		Owner:         rel.Target,
		Target:        rel.Owner,
		TargetName:    rel.Owner.Name,
		BackPopulates: rel.Key,
		Reverse:       rel,
		ForeignKeys:   rel.ForeignKeys,
		Secondary:     rel.Secondary,
	}
	if err := rel.Target.addRelationship(rev); err != nil {
		return err
	}
	rel.Reverse = rev
	rel.Owner.registry.log.WithFields(logrus.Fields{
		"model":    rev.Owner.Name,
		"relation": rev.Key,
	}).Debug("relm: added backref")
	return nil
}

// linkBackPopulates links the relationships of m with the relationships they
// back-populate on their targets.
func linkBackPopulates(m *Model) error {
	var errs []error
	for _, rel := range m.relOrder {
		if rel.BackPopulates == "" || rel.Reverse != nil || rel.Target == nil {
			continue
		}
		other, ok := rel.Target.Relationship(rel.BackPopulates)
		switch {
		case !ok:
			errs = append(errs, &InvalidRequestError{
				Model:    m.Name,
				Relation: rel.Key,
				Msg:      fmt.Sprintf("model %s has no relationship %q", rel.Target.Name, rel.BackPopulates),
			})
		case other.Direction != rel.Direction.Reverse():
			errs = append(errs, &InvalidRequestError{
				Model:    m.Name,
				Relation: rel.Key,
				Msg:      fmt.Sprintf("relationship %s.%s is %s, expected %s", rel.Target.Name, other.Key, other.Direction, rel.Direction.Reverse()),
			})
		case other.TargetName != m.Name:
			errs = append(errs, &InvalidRequestError{
				Model:    m.Name,
				Relation: rel.Key,
				Msg:      fmt.Sprintf("relationship %s.%s targets model %s", rel.Target.Name, other.Key, other.TargetName),
			})
		case other.BackPopulates != "" && other.BackPopulates != rel.Key:
			errs = append(errs, &InvalidRequestError{
				Model:    m.Name,
				Relation: rel.Key,
				Msg:      fmt.Sprintf("relationship %s.%s back-populates %q", rel.Target.Name, other.Key, other.BackPopulates),
			})
		case other.Reverse != nil && other.Reverse != rel:
			errs = append(errs, &InvalidRequestError{
				Model:    m.Name,
				Relation: rel.Key,
				Msg:      fmt.Sprintf("relationship %s.%s is already linked with %s.%s", rel.Target.Name, other.Key, other.Reverse.Owner.Name, other.Reverse.Key),
			})
		default:
			rel.Reverse, other.Reverse = other, rel
			if !sameStorage(rel, other) {
				m.registry.log.WithFields(logrus.Fields{
					"model":    m.Name,
					"relation": rel.Key,
					"reverse":  rel.Target.Name + "." + other.Key,
				}).Warn("relm: back-populated relationships do not share foreign keys or association table")
			}
		}
	}
	return NewAggregateError(errs...)
}

// sameStorage reports if two linked relationships use the same foreign key
// columns or association table.
func sameStorage(a, b *Relationship) bool {
	if a.Direction == edge.M2M {
		return a.Secondary == b.Secondary
	}
	return slices.Equal(a.ForeignKeys, b.ForeignKeys)
}

func joinNonEmpty(sep string, parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, sep)
}
