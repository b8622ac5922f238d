package model

// ProjectileKind distinguishes the projectile families the impact path
// routes differently.
type ProjectileKind int

const (
	ProjectileArrow ProjectileKind = iota
	ProjectileThrown
	ProjectileBobber
)

func (k ProjectileKind) String() string {
	switch k {
	case ProjectileArrow:
		return "arrow"
	case ProjectileThrown:
		return "thrown"
	case ProjectileBobber:
		return "bobber"
	default:
		return "unknown"
	}
}

// Projectile is an in-flight entity referencing its shooter by id.
// The reference is weak: the shooter may have left the world, and every
// lookup tolerates that.
type Projectile struct {
	*Entity

	Kind ProjectileKind

	// ShooterID is the id of the entity that launched the projectile,
	// 0 when unattributed.
	ShooterID uint32

	// ShooterOrigin is the shooter's position at launch time, used for
	// SHOOTER_ORIGIN knockback direction.
	ShooterOrigin Vec3

	// SpawnTick is the server tick the projectile entered the world.
	// Collisions against the shooter are ignored for the first few ticks.
	SpawnTick int64

	// BaseDamage: arrows scale it by velocity magnitude on impact,
	// thrown items and bobbers apply it flat.
	BaseDamage float64

	// Weapon is the item that launched the projectile (bow, rod), nil if
	// none. Carries the item tag layer for per-shot config resolution.
	Weapon *ItemStack
}

// Hitbox dimensions per projectile kind.
const (
	arrowSize  = 0.25
	bobberSize = 0.25
)

// NewProjectile creates a projectile of the given kind.
func NewProjectile(id uint32, kind ProjectileKind, shooterID uint32, shooterOrigin Vec3, spawnTick int64) *Projectile {
	var typ EntityType
	switch kind {
	case ProjectileThrown:
		typ = TypeThrownItem
	case ProjectileBobber:
		typ = TypeFishingBobber
	default:
		typ = TypeArrow
	}
	return &Projectile{
		Entity:        NewEntity(id, typ, arrowSize, arrowSize),
		Kind:          kind,
		ShooterID:     shooterID,
		ShooterOrigin: shooterOrigin,
		SpawnTick:     spawnTick,
		BaseDamage:    2,
	}
}
