package model

import "github.com/rs/xid"

// ItemStack is a concrete item instance held by an entity.
// Two stacks of the same kind are distinct instances; the damage pipeline's
// same-item lockout compares instance identity, not kind.
type ItemStack struct {
	// Kind is the item identifier, e.g. "iron_sword", "bow", "shield".
	Kind string

	// Count of items in the stack.
	Count int

	// Enchantments maps enchantment id → level, e.g. "knockback" → 2.
	Enchantments map[string]int

	// instance distinguishes this stack from any other stack of the same kind.
	instance xid.ID

	tags *TagStore
}

// NewItemStack creates a single item of the given kind with a fresh identity.
func NewItemStack(kind string) *ItemStack {
	return &ItemStack{
		Kind:     kind,
		Count:    1,
		instance: xid.New(),
		tags:     NewTagStore(),
	}
}

// InstanceID returns the stack's stable identity.
func (i *ItemStack) InstanceID() xid.ID {
	if i == nil {
		return xid.NilID()
	}
	return i.instance
}

// Same reports whether o is the same item instance as i.
// Nil stacks are never the same as anything, including another nil.
func (i *ItemStack) Same(o *ItemStack) bool {
	if i == nil || o == nil {
		return false
	}
	return i.instance == o.instance
}

// Tags returns the stack's tag store (item-layer config overrides).
func (i *ItemStack) Tags() *TagStore {
	if i == nil {
		return nil
	}
	return i.tags
}

// EnchantLevel returns the level of the named enchantment, 0 if absent.
func (i *ItemStack) EnchantLevel(name string) int {
	if i == nil || i.Enchantments == nil {
		return 0
	}
	return i.Enchantments[name]
}
