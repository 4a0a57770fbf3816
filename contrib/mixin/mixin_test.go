package mixin_test

import (
	"testing"

	"github.com/syssam/relm"
	"github.com/syssam/relm/contrib/mixin"
	"github.com/syssam/relm/dialect/sqlschema"
	"github.com/syssam/relm/schema/edge"
	"github.com/syssam/relm/schema/field"
	rmixin "github.com/syssam/relm/schema/mixin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTenantMixin tests the Tenant mixin.
func TestTenantMixin(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rels := mixin.Tenant{}.Relations()
		require.Len(t, rels, 1)
		desc := rels[0].Descriptor()
		require.NoError(t, desc.Err)
		assert.Equal(t, "tenant", desc.Name)
		assert.Equal(t, "Tenant", desc.Type)
		assert.Equal(t, edge.M2O, desc.Direction)
		require.NotNil(t, desc.FK.Nullable)
		assert.False(t, *desc.FK.Nullable)
		assert.Equal(t, sqlschema.Cascade, desc.FK.OnDelete)
		assert.Empty(t, desc.Backref)
	})

	t.Run("model_and_backref", func(t *testing.T) {
		desc := mixin.Tenant{Model: "Org", Backref: "invoices"}.Relations()[0].Descriptor()
		assert.Equal(t, "Org", desc.Type)
		assert.Equal(t, "invoices", desc.Backref)
	})

	t.Run("fresh_builders", func(t *testing.T) {
		m := mixin.Tenant{}
		assert.NotSame(t, m.Relations()[0], m.Relations()[0])
	})
}

// TestAuditMixin tests the Audit mixin.
func TestAuditMixin(t *testing.T) {
	rels := mixin.Audit{}.Relations()
	require.Len(t, rels, 2)
	for i, name := range []string{"created_by", "updated_by"} {
		desc := rels[i].Descriptor()
		require.NoError(t, desc.Err)
		assert.Equal(t, name, desc.Name)
		assert.Equal(t, "User", desc.Type)
		assert.Equal(t, sqlschema.SetNull, desc.FK.OnDelete)
		assert.Nil(t, desc.FK.Nullable)
	}
	assert.Equal(t, "Member", mixin.Audit{Model: "Member"}.Relations()[0].Descriptor().Type)
}

type Tenant struct{ relm.Schema }

func (Tenant) Mixin() []relm.Mixin {
	return []relm.Mixin{rmixin.UUIDID{}}
}

type User struct{ relm.Schema }

func (User) Mixin() []relm.Mixin {
	return []relm.Mixin{
		rmixin.ID{},
		mixin.Tenant{Backref: "users"},
		mixin.Audit{},
	}
}

type Invoice struct{ relm.Schema }

func (Invoice) Mixin() []relm.Mixin {
	return []relm.Mixin{
		rmixin.ID{},
		mixin.Tenant{},
		mixin.Audit{},
	}
}

func (Invoice) Fields() []relm.Field {
	return []relm.Field{field.Float64("total")}
}

// TestMixinRegistry tests the mixins through a configured registry.
func TestMixinRegistry(t *testing.T) {
	reg := relm.NewRegistry()
	require.NoError(t, reg.Register(Tenant{}, User{}, Invoice{}))
	require.NoError(t, reg.Configure())

	for _, name := range []string{"User", "Invoice"} {
		m, ok := reg.Model(name)
		require.True(t, ok)
		tenantID, ok := m.Table.Column("tenant_id")
		require.True(t, ok, name)
		assert.False(t, tenantID.Nullable)
		assert.Equal(t, field.TypeUUID, tenantID.Type)
		for _, col := range []string{"created_by_id", "updated_by_id"} {
			c, ok := m.Table.Column(col)
			require.True(t, ok, col)
			assert.True(t, c.Nullable)
			assert.Equal(t, field.TypeInt64, c.Type)
		}
		require.Len(t, m.Table.ForeignKeys, 3)
		assert.EqualValues(t, sqlschema.Cascade, m.Table.ForeignKeys[0].OnDelete)
		assert.EqualValues(t, sqlschema.SetNull, m.Table.ForeignKeys[1].OnDelete)
		assert.EqualValues(t, sqlschema.SetNull, m.Table.ForeignKeys[2].OnDelete)
	}

	tenant, _ := reg.Model("Tenant")
	users, ok := tenant.Relationship("users")
	require.True(t, ok)
	assert.Equal(t, edge.O2M, users.Direction)
	_, ok = tenant.Relationship("invoices")
	assert.False(t, ok)
}
