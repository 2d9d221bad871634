package model

import (
	"errors"
	"fmt"
)

// Kind identifies what an entity is. Values match the game server's entity kinds.
type Kind uint8

const (
	KindWarrior Kind = 1

	// Mobs
	KindRat         Kind = 2
	KindSkeleton    Kind = 3
	KindGoblin      Kind = 4
	KindOgre        Kind = 5
	KindSpectre     Kind = 6
	KindCrab        Kind = 7
	KindBat         Kind = 8
	KindWizard      Kind = 9
	KindEye         Kind = 10
	KindSnake       Kind = 11
	KindSkeleton2   Kind = 12
	KindBoss        Kind = 13
	KindDeathKnight Kind = 14

	// Armors
	KindFirefox      Kind = 20
	KindClothArmor   Kind = 21
	KindLeatherArmor Kind = 22
	KindMailArmor    Kind = 23
	KindPlateArmor   Kind = 24
	KindRedArmor     Kind = 25
	KindGoldenArmor  Kind = 26

	// Objects
	KindFlask      Kind = 35
	KindBurger     Kind = 36
	KindChest      Kind = 37
	KindFirePotion Kind = 38
	KindCake       Kind = 39

	// NPCs
	KindGuard       Kind = 40
	KindKing        Kind = 41
	KindOctocat     Kind = 42
	KindVillageGirl Kind = 43
	KindVillager    Kind = 44
	KindPriest      Kind = 45
	KindScientist   Kind = 46
	KindAgent       Kind = 47
	KindRick        Kind = 48
	KindNyan        Kind = 49
	KindSorcerer    Kind = 50
	KindBeachNpc    Kind = 51
	KindForestNpc   Kind = 52
	KindDesertNpc   Kind = 53
	KindLavaNpc     Kind = 54
	KindCoder       Kind = 55

	// Weapons
	KindSword1      Kind = 60
	KindSword2      Kind = 61
	KindRedSword    Kind = 62
	KindGoldenSword Kind = 63
	KindMorningStar Kind = 64
	KindAxe         Kind = 65
	KindBlueSword   Kind = 66
)

// Category is the broad family a kind belongs to.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryPlayer
	CategoryMob
	CategoryNpc
	CategoryArmor
	CategoryWeapon
	CategoryObject
)

type kindInfo struct {
	name     string
	category Category
}

var kinds = map[Kind]kindInfo{
	KindWarrior: {"warrior", CategoryPlayer},

	KindRat:         {"rat", CategoryMob},
	KindSkeleton:    {"skeleton", CategoryMob},
	KindGoblin:      {"goblin", CategoryMob},
	KindOgre:        {"ogre", CategoryMob},
	KindSpectre:     {"spectre", CategoryMob},
	KindCrab:        {"crab", CategoryMob},
	KindBat:         {"bat", CategoryMob},
	KindWizard:      {"wizard", CategoryMob},
	KindEye:         {"eye", CategoryMob},
	KindSnake:       {"snake", CategoryMob},
	KindSkeleton2:   {"skeleton2", CategoryMob},
	KindBoss:        {"boss", CategoryMob},
	KindDeathKnight: {"deathknight", CategoryMob},

	KindFirefox:      {"firefox", CategoryArmor},
	KindClothArmor:   {"clotharmor", CategoryArmor},
	KindLeatherArmor: {"leatherarmor", CategoryArmor},
	KindMailArmor:    {"mailarmor", CategoryArmor},
	KindPlateArmor:   {"platearmor", CategoryArmor},
	KindRedArmor:     {"redarmor", CategoryArmor},
	KindGoldenArmor:  {"goldenarmor", CategoryArmor},

	KindFlask:      {"flask", CategoryObject},
	KindBurger:     {"burger", CategoryObject},
	KindChest:      {"chest", CategoryObject},
	KindFirePotion: {"firepotion", CategoryObject},
	KindCake:       {"cake", CategoryObject},

	KindGuard:       {"guard", CategoryNpc},
	KindKing:        {"king", CategoryNpc},
	KindOctocat:     {"octocat", CategoryNpc},
	KindVillageGirl: {"villagegirl", CategoryNpc},
	KindVillager:    {"villager", CategoryNpc},
	KindPriest:      {"priest", CategoryNpc},
	KindScientist:   {"scientist", CategoryNpc},
	KindAgent:       {"agent", CategoryNpc},
	KindRick:        {"rick", CategoryNpc},
	KindNyan:        {"nyan", CategoryNpc},
	KindSorcerer:    {"sorcerer", CategoryNpc},
	KindBeachNpc:    {"beachnpc", CategoryNpc},
	KindForestNpc:   {"forestnpc", CategoryNpc},
	KindDesertNpc:   {"desertnpc", CategoryNpc},
	KindLavaNpc:     {"lavanpc", CategoryNpc},
	KindCoder:       {"coder", CategoryNpc},

	KindSword1:      {"sword1", CategoryWeapon},
	KindSword2:      {"sword2", CategoryWeapon},
	KindRedSword:    {"redsword", CategoryWeapon},
	KindGoldenSword: {"goldensword", CategoryWeapon},
	KindMorningStar: {"morningstar", CategoryWeapon},
	KindAxe:         {"axe", CategoryWeapon},
	KindBlueSword:   {"bluesword", CategoryWeapon},
}

// String returns the kind's lower-case name ("rat", "flask"), or "kind(N)" if unknown.
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Category returns the kind's family.
func (k Kind) Category() Category {
	return kinds[k].category
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// ErrUnknownKind is returned for kind names missing from the kind table.
var ErrUnknownKind = errors.New("unknown kind")

// ParseKind resolves a kind name as used in map and config files.
func ParseKind(name string) (Kind, error) {
	for k, info := range kinds {
		if info.name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("parsing kind %q: %w", name, ErrUnknownKind)
}
