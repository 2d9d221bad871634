package dirty

import "github.com/udisondev/tileworld/internal/model"

// Sprite is the drawn footprint of a kind relative to the entity's pixel
// position, in unscaled pixels.
type Sprite struct {
	OffsetX int `yaml:"offset_x"`
	OffsetY int `yaml:"offset_y"`
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
}

// SpriteMetrics resolves the footprint of a kind. Sprite images themselves
// are loaded elsewhere.
type SpriteMetrics interface {
	Sprite(k model.Kind) Sprite
}

// StaticMetrics is a fixed footprint table with per-category fallbacks.
type StaticMetrics map[model.Kind]Sprite

var (
	characterSprite = Sprite{OffsetX: -8, OffsetY: -12, Width: 32, Height: 32}
	largeSprite     = Sprite{OffsetX: -16, OffsetY: -24, Width: 48, Height: 48}
	itemSprite      = Sprite{Width: 16, Height: 16}
)

// DefaultMetrics returns the footprints of the stock sprite sheets.
func DefaultMetrics() StaticMetrics {
	return StaticMetrics{
		model.KindOgre:        largeSprite,
		model.KindBoss:        {OffsetX: -24, OffsetY: -36, Width: 64, Height: 64},
		model.KindDeathKnight: largeSprite,
		model.KindSkeleton2:   largeSprite,
	}
}

// Sprite implements SpriteMetrics.
func (m StaticMetrics) Sprite(k model.Kind) Sprite {
	if s, ok := m[k]; ok {
		return s
	}
	switch k.Category() {
	case model.CategoryPlayer, model.CategoryMob, model.CategoryNpc:
		return characterSprite
	}
	return itemSprite
}
