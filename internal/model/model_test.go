package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec3Ops(t *testing.T) {
	v := NewVec3(3, 4, 0)
	assert.Equal(t, 5.0, v.Length())
	assert.Equal(t, 25.0, v.LengthSquared())
	assert.Equal(t, 3.0, v.HorizontalLength())

	n := v.Normalize()
	assert.InDelta(t, 1.0, n.Length(), 1e-12)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize(), "zero vector stays zero")

	assert.Equal(t, NewVec3(4, 6, 1), v.Add(NewVec3(1, 2, 1)))
	assert.Equal(t, NewVec3(3, 0, 0), v.Horizontal())
	assert.Equal(t, NewVec3(3, 9, 0), v.WithY(9))
}

func TestBoxAt(t *testing.T) {
	box := BoxAt(NewVec3(10, 64, -3), 0.6, 1.8)
	assert.Equal(t, NewVec3(9.7, 64, -3.3), box.Min)
	assert.Equal(t, NewVec3(10.3, 65.8, -2.7), box.Max)
	assert.Equal(t, NewVec3(10, 64.9, -3), box.Center())
}

func TestAABBDistance(t *testing.T) {
	box := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	assert.Equal(t, 0.0, box.DistanceTo(NewVec3(0.5, 0.5, 0.5)), "inside")
	assert.Equal(t, 2.0, box.DistanceTo(NewVec3(3, 0.5, 0.5)))

	grown := box.Expand(0.5)
	assert.Equal(t, NewVec3(-0.5, -0.5, -0.5), grown.Min)
	assert.True(t, grown.Contains(NewVec3(1.2, 1.2, 1.2)))
}

func TestItemStackIdentity(t *testing.T) {
	a := NewItemStack("iron_sword")
	b := NewItemStack("iron_sword")

	assert.True(t, a.Same(a))
	assert.False(t, a.Same(b), "same kind, different instances")

	var nilStack *ItemStack
	assert.False(t, nilStack.Same(a))
	assert.False(t, a.Same(nilStack))
	assert.False(t, nilStack.Same(nilStack), "nil is never the same as anything")
	assert.Nil(t, nilStack.Tags())
	assert.Equal(t, 0, nilStack.EnchantLevel("knockback"))
}

func TestTagStoreTypes(t *testing.T) {
	s := NewTagStore()
	s.Set(TagKnockbackMultiplier, []float64{2, 3})
	s.Set(TagBypassInvulnerability, true)

	assert.Equal(t, []float64{2, 3}, s.Floats(TagKnockbackMultiplier))
	assert.True(t, s.Bool(TagBypassInvulnerability))
	assert.Nil(t, s.Floats("absent"))
	assert.False(t, s.Bool("absent"))
	assert.Nil(t, s.Floats(TagBypassInvulnerability), "type mismatch reads nil")

	s.Clear()
	assert.False(t, s.Has(TagKnockbackMultiplier))
}

func TestEntityHealth(t *testing.T) {
	e := NewEntity(1, TypeMob, 0.6, 1.8)
	require.Equal(t, 20.0, e.Health())

	died := e.ReduceHealth(5)
	assert.False(t, died)
	assert.Equal(t, 15.0, e.Health())

	died = e.ReduceHealth(100)
	assert.True(t, died)
	assert.Equal(t, 0.0, e.Health())
	assert.True(t, e.IsDead())

	died = e.ReduceHealth(1)
	assert.False(t, died, "already dead")

	e.SetHealth(50)
	assert.Equal(t, 20.0, e.Health(), "clamped to max")
}

func TestEntityAttributes(t *testing.T) {
	e := NewEntity(1, TypeMob, 0.6, 1.8)
	assert.Equal(t, 0.0, e.Attribute(AttrKnockbackResistance), "absent reads zero")

	e.SetAttribute(AttrArmor, 12)
	assert.Equal(t, 12.0, e.Attribute(AttrArmor))
}

func TestPlayerSprintConsume(t *testing.T) {
	p := NewPlayer(1, uuid.New(), ProtocolModern)
	p.SetSprinting(true)

	assert.True(t, p.ClearSprint())
	assert.False(t, p.Sprinting())
	assert.False(t, p.ClearSprint(), "already cleared")
}

func TestProjectileKinds(t *testing.T) {
	p := NewProjectile(5, ProjectileBobber, 1, NewVec3(1, 2, 3), 42)
	assert.Equal(t, TypeFishingBobber, p.Type())
	assert.Equal(t, uint32(1), p.ShooterID)
	assert.Equal(t, int64(42), p.SpawnTick)
	assert.Equal(t, "bobber", p.Kind.String())
}
