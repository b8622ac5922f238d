package knockback

import (
	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/game/tags"
	"github.com/udisondev/voxelpvp/internal/model"
)

// Component order of the knockback record in tag multipliers/modifies:
// horizontal, vertical, verticalLimit, sprintBonusH, sprintBonusV,
// airMultiplierH, airMultiplierV, lookWeight.
var resolver = tags.Resolver[config.Knockback]{
	ToVec: func(k config.Knockback) []float64 {
		return []float64{
			k.Horizontal, k.Vertical, k.VerticalLimit,
			k.SprintBonusH, k.SprintBonusV,
			k.AirMultiplierH, k.AirMultiplierV,
			k.LookWeight,
		}
	},
	FromVec: func(k config.Knockback, v []float64) config.Knockback {
		k.Horizontal, k.Vertical, k.VerticalLimit = v[0], v[1], v[2]
		k.SprintBonusH, k.SprintBonusV = v[3], v[4]
		k.AirMultiplierH, k.AirMultiplierV = v[5], v[6]
		k.LookWeight = v[7]
		return k
	},
	Clamp: func(k config.Knockback) config.Knockback {
		if k.LookWeight < 0 {
			k.LookWeight = 0
		} else if k.LookWeight > 1 {
			k.LookWeight = 1
		}
		if k.VerticalLimit < 0 {
			k.VerticalLimit = 0
		}
		if k.AirMultiplierH < 0 {
			k.AirMultiplierH = 0
		}
		if k.AirMultiplierV < 0 {
			k.AirMultiplierV = 0
		}
		return k
	},
}

// ResolveConfig layers the tag chain over the base record for one hit.
// Projectile hits consult the parallel projectile key set. The result is
// a fresh record, never shared or mutated afterwards.
func ResolveConfig(
	base config.Knockback,
	kind Kind,
	weapon *model.ItemStack,
	attackerTags, victimTags, worldTags *model.TagStore,
) config.Knockback {
	keys := tags.KnockbackKeys
	if kind == KindProjectile {
		keys = tags.KnockbackProjectileKeys
	}
	layers := tags.Gather(keys, weapon, attackerTags, victimTags, worldTags)
	return resolver.Resolve(base, layers)
}
