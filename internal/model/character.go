package model

import (
	"time"

	"github.com/udisondev/tileworld/internal/transition"
)

// Character defaults used when the session does not send its own.
const (
	DefaultMoveSpeed  = 120 * time.Millisecond
	DefaultAttackRate = 800 * time.Millisecond
	DefaultAggroRange = 1
)

// Character is the movement and combat state of a movable entity.
type Character struct {
	Orientation Orientation
	MoveSpeed   time.Duration
	AttackRate  time.Duration

	Movement *transition.Transition

	// Path holds the full route including the starting cell; Step indexes
	// the cell the character is currently leaving.
	Path []Point
	Step int

	Destination    *Point
	NewDestination *Point
	Interrupted    bool

	Following bool
	Attacking bool

	Target         ID
	PreviousTarget ID

	// AdjacentClaims records which sides of this character are taken by
	// attackers, in Orientations order.
	AdjacentClaims [4]bool

	AggroRange      int
	Aggressive      bool
	WaitingToAttack bool
	LastAttack      time.Time

	// LootMoving is set while the player walks toward an item.
	LootMoving bool

	LastCheckpoint int
}

func newCharacter(caps Capabilities) Character {
	c := Character{
		Orientation:    OrientationDown,
		MoveSpeed:      DefaultMoveSpeed,
		AttackRate:     DefaultAttackRate,
		Movement:       transition.New(),
		LastCheckpoint: -1,
	}
	if caps.Has(CapMob) {
		c.AggroRange = DefaultAggroRange
		c.Aggressive = true
	}
	return c
}

// HasNextStep reports whether the path continues past the current step.
func (c *Character) HasNextStep() bool {
	return len(c.Path)-1 > c.Step
}

// HasChangedPath reports whether a new destination is pending.
func (c *Character) HasChangedPath() bool {
	return c.NewDestination != nil
}

// HasTarget reports whether the character is engaged with something.
func (c *Character) HasTarget() bool {
	return c.Target != NoID
}

// ResetClaims frees all adjacency claims.
func (c *Character) ResetClaims() {
	c.AdjacentClaims = [4]bool{}
}

// CanAttack reports whether the attack cooldown has elapsed.
func (c *Character) CanAttack(now time.Time) bool {
	if now.Sub(c.LastAttack) > c.AttackRate {
		c.LastAttack = now
		return true
	}
	return false
}

// ClaimIndex returns the AdjacentClaims slot of an orientation.
func ClaimIndex(o Orientation) int {
	for i, v := range Orientations {
		if v == o {
			return i
		}
	}
	return -1
}
