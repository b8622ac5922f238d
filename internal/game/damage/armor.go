package damage

import "github.com/udisondev/voxelpvp/internal/config"

// armorBypassKinds always skip armor reduction, regardless of the
// per-kind properties.
var armorBypassKinds = map[string]bool{
	config.KindVoid:      true,
	config.KindStarve:    true,
	config.KindMagic:     true,
	config.KindWither:    true,
	config.KindSonicBoom: true,
}

// maxEffectiveArmor caps the effective armor points of the reduction
// formula; 20 points is 80% reduction.
const maxEffectiveArmor = 20

// reduceByArmor applies the conventional two-branch armor formula:
//
//	effective = clamp(max(armor/5, armor − dmg/(2 + toughness/4)), 0, 20)
//	reduced   = dmg · (1 − effective/25)
//
// Malformed attributes (negative armor) degrade to zero reduction; armor
// errors are never fatal on the hot path.
func reduceByArmor(dmg, armor, toughness float64) float64 {
	if dmg <= 0 || armor <= 0 {
		return dmg
	}
	if toughness < 0 {
		toughness = 0
	}

	effective := armor - dmg/(2+toughness/4)
	if floor := armor / 5; floor > effective {
		effective = floor
	}
	if effective < 0 {
		effective = 0
	} else if effective > maxEffectiveArmor {
		effective = maxEffectiveArmor
	}

	return dmg * (1 - effective/25)
}
