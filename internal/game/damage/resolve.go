package damage

import (
	"github.com/udisondev/voxelpvp/internal/config"
	"github.com/udisondev/voxelpvp/internal/game/tags"
	"github.com/udisondev/voxelpvp/internal/model"
)

// Component order of the damage-type record in tag multipliers/modifies:
// multiplier, replacementCutoff, invulnerabilityBufferTicks.
var propsResolver = tags.Resolver[config.DamageTypeProperties]{
	ToVec: func(p config.DamageTypeProperties) []float64 {
		return []float64{p.Multiplier, p.ReplacementCutoff, float64(p.InvulnerabilityBufferTicks)}
	},
	FromVec: func(p config.DamageTypeProperties, v []float64) config.DamageTypeProperties {
		p.Multiplier = v[0]
		p.ReplacementCutoff = v[1]
		p.InvulnerabilityBufferTicks = int(v[2])
		return p
	},
	Clamp: func(p config.DamageTypeProperties) config.DamageTypeProperties {
		if p.Multiplier < 0 {
			p.Multiplier = 0
		}
		if p.ReplacementCutoff < 0 {
			p.ReplacementCutoff = 0
		}
		if p.InvulnerabilityBufferTicks < 0 {
			p.InvulnerabilityBufferTicks = 0
		}
		return p
	},
}

// invulnResolver resolves the base window record; the tag key carries a
// custom-only record.
var invulnResolver = tags.Resolver[config.Invulnerability]{
	ToVec: func(i config.Invulnerability) []float64 {
		return []float64{float64(i.Ticks)}
	},
	FromVec: func(i config.Invulnerability, v []float64) config.Invulnerability {
		i.Ticks = int(v[0])
		return i
	},
	Clamp: func(i config.Invulnerability) config.Invulnerability {
		if i.Ticks < 0 {
			i.Ticks = 0
		}
		return i
	},
}

// resolveProps layers the tag chain over the per-kind base record.
func resolveProps(
	base config.DamageTypeProperties,
	weapon *model.ItemStack,
	attackerTags, victimTags, worldTags *model.TagStore,
) config.DamageTypeProperties {
	layers := tags.Gather(tags.DamageKeys, weapon, attackerTags, victimTags, worldTags)
	return propsResolver.Resolve(base, layers)
}

// resolveInvuln resolves the base invulnerability window for a hit.
func resolveInvuln(
	base config.Invulnerability,
	weapon *model.ItemStack,
	attackerTags, victimTags, worldTags *model.TagStore,
) config.Invulnerability {
	layers := tags.Gather(tags.InvulnerabilityKeys, weapon, attackerTags, victimTags, worldTags)
	return invulnResolver.Resolve(base, layers)
}
