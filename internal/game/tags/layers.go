package tags

import "github.com/udisondev/voxelpvp/internal/model"

// Keys names the three tag keys of one config family.
type Keys struct {
	Multiplier string
	Modify     string
	Custom     string
}

// KnockbackKeys is the melee knockback family.
var KnockbackKeys = Keys{
	Multiplier: model.TagKnockbackMultiplier,
	Modify:     model.TagKnockbackModify,
	Custom:     model.TagKnockbackCustom,
}

// KnockbackProjectileKeys is the parallel key set consulted when the
// attacker is a projectile entity.
var KnockbackProjectileKeys = Keys{
	Multiplier: model.TagKnockbackProjectileMultiplier,
	Modify:     model.TagKnockbackProjectileModify,
	Custom:     model.TagKnockbackProjectileCustom,
}

// DamageKeys is the damage-type family.
var DamageKeys = Keys{
	Multiplier: model.TagDamageMultiplier,
	Modify:     model.TagDamageModify,
	Custom:     model.TagDamageCustom,
}

// InvulnerabilityKeys carries a custom-only record.
var InvulnerabilityKeys = Keys{
	Custom: model.TagInvulnerability,
}

// layerFrom reads one store's contribution for the family keys.
func layerFrom(store *model.TagStore, keys Keys) Layer {
	if store == nil {
		return Layer{}
	}
	var l Layer
	if keys.Multiplier != "" {
		l.Multiplier = store.Floats(keys.Multiplier)
	}
	if keys.Modify != "" {
		l.Modify = store.Floats(keys.Modify)
	}
	if keys.Custom != "" {
		l.Custom = store.Get(keys.Custom)
	}
	return l
}

// Gather collects the resolution layers for a hit, highest priority first:
// attacker's main-hand item, attacker, victim, world. Any store may be nil
// (unattributed projectile, worldless test setup). Empty layers are
// dropped so Resolve walks only real contributions.
func Gather(keys Keys, item *model.ItemStack, attacker, victim, world *model.TagStore) []Layer {
	stores := [...]*model.TagStore{item.Tags(), attacker, victim, world}

	layers := make([]Layer, 0, len(stores))
	for _, s := range stores {
		if l := layerFrom(s, keys); !l.Empty() {
			layers = append(layers, l)
		}
	}
	return layers
}
