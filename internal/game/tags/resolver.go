// Package tags implements the layered per-hit config resolution chain:
// attacker's main-hand item → attacker entity → victim entity → world →
// server default. It is the single mechanism that lets items, players and
// worlds reshape knockback, damage and invulnerability per hit without the
// hot path branching on provenance.
package tags

// Layer is one contribution to a resolution. Any combination of the three
// parts may be present.
type Layer struct {
	// Multiplier stacks multiplicatively across layers, per component.
	Multiplier []float64

	// Modify stacks additively across layers, per component.
	Modify []float64

	// Custom is a complete override record (the family's config type).
	// The highest-priority non-nil Custom replaces the base outright.
	Custom any
}

// Empty reports whether the layer contributes nothing.
func (l Layer) Empty() bool {
	return l.Multiplier == nil && l.Modify == nil && l.Custom == nil
}

// Resolver resolves one config family expressed as a component vector.
// ToVec/FromVec convert between the family's record and its vector form;
// Clamp enforces per-field validity ranges on the final record.
type Resolver[T any] struct {
	ToVec   func(T) []float64
	FromVec func(T, []float64) T
	Clamp   func(T) T
}

// Resolve layers the contributions over base. layers are ordered highest
// priority first (item, attacker, victim, world).
//
// The highest-priority Custom, if any, replaces the base; lower-priority
// Customs are ignored. All Multipliers then apply as one per-component
// product and all Modifies as one per-component sum, which makes the
// result independent of layer order within each part.
func (r Resolver[T]) Resolve(base T, layers []Layer) T {
	result := base
	for _, l := range layers {
		if l.Custom == nil {
			continue
		}
		if custom, ok := l.Custom.(T); ok {
			result = custom
		}
		break
	}

	vec := r.ToVec(result)

	mult := make([]float64, len(vec))
	for i := range mult {
		mult[i] = 1
	}
	add := make([]float64, len(vec))

	// Lowest priority first, per the resolution contract. Order within
	// each part cannot matter: products and sums commute.
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		for c, m := range l.Multiplier {
			if c < len(mult) {
				mult[c] *= m
			}
		}
		for c, a := range l.Modify {
			if c < len(add) {
				add[c] += a
			}
		}
	}

	for c := range vec {
		vec[c] = vec[c]*mult[c] + add[c]
	}

	result = r.FromVec(result, vec)
	if r.Clamp != nil {
		result = r.Clamp(result)
	}
	return result
}
