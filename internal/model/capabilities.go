package model

// Capabilities is the behaviour table of a kind. Grid and pathfinding code
// switches on these bits instead of on concrete kinds.
type Capabilities uint16

const (
	// CapMovable entities walk paths and own a movement transition.
	CapMovable Capabilities = 1 << iota
	// CapAttackable entities can be engaged as a target.
	CapAttackable
	// CapLootable entities are picked up when a player stops on their cell.
	CapLootable
	// CapBlocking entities occupy the pathing grid.
	CapBlocking
	// CapExpendable items win item-grid queries over equipment.
	CapExpendable
	// CapOccupant entities live in the entity grid (characters and chests).
	CapOccupant
	CapPlayer
	CapMob
	CapNpc
	CapChest
	CapHealing
)

// Has reports whether all bits of c2 are set.
func (c Capabilities) Has(c2 Capabilities) bool {
	return c&c2 == c2
}

// CapabilitiesOf derives the capability table for a kind.
//
// Players are movable occupants but never blocking: other characters must be
// able to path through the player's cell while engaging it.
func CapabilitiesOf(k Kind) Capabilities {
	switch k.Category() {
	case CategoryPlayer:
		return CapMovable | CapAttackable | CapOccupant | CapPlayer
	case CategoryMob:
		return CapMovable | CapAttackable | CapOccupant | CapBlocking | CapMob
	case CategoryNpc:
		return CapMovable | CapOccupant | CapBlocking | CapNpc
	case CategoryArmor, CategoryWeapon:
		return CapLootable
	case CategoryObject:
		switch k {
		case KindChest:
			return CapOccupant | CapBlocking | CapChest
		case KindFlask, KindBurger:
			return CapLootable | CapExpendable | CapHealing
		case KindFirePotion, KindCake:
			return CapLootable | CapExpendable
		}
		return CapLootable
	}
	return 0
}

// IsItem reports whether the entity is placed in the item grid.
func (c Capabilities) IsItem() bool {
	return c.Has(CapLootable)
}

// IsCharacter reports whether the entity runs the character state machine.
func (c Capabilities) IsCharacter() bool {
	return c.Has(CapMovable)
}
