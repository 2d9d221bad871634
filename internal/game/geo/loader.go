package geo

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/tileworld/internal/model"
)

// mapFile mirrors the client map JSON. JSON is valid YAML 1.2 flow syntax,
// so the same decoder reads both.
type mapFile struct {
	Width       int                     `yaml:"width"`
	Height      int                     `yaml:"height"`
	TileSize    int                     `yaml:"tilesize"`
	Data        []tileStack             `yaml:"data"`
	Collisions  []int                   `yaml:"collisions"`
	Blocking    []int                   `yaml:"blocking"`
	Plateau     []int                   `yaml:"plateau"`
	High        []int                   `yaml:"high"`
	Animated    map[string]animatedFile `yaml:"animated"`
	Doors       []doorFile              `yaml:"doors"`
	Checkpoints []checkpointFile        `yaml:"checkpoints"`
}

type animatedFile struct {
	Length int `yaml:"l"`
	// Delay in milliseconds.
	Delay int `yaml:"d"`
}

type doorFile struct {
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	Portal  int    `yaml:"p"`
	CameraX int    `yaml:"tcx"`
	CameraY int    `yaml:"tcy"`
	To      string `yaml:"to"`
	TargetX int    `yaml:"tx"`
	TargetY int    `yaml:"ty"`
}

type checkpointFile struct {
	ID int `yaml:"id"`
	X  int `yaml:"x"`
	Y  int `yaml:"y"`
	W  int `yaml:"w"`
	H  int `yaml:"h"`
}

// tileStack is one cell of the data layer: either a single id or a list of ids.
type tileStack []int

func (t *tileStack) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var ids []int
		if err := value.Decode(&ids); err != nil {
			return err
		}
		*t = ids
		return nil
	}

	var id int
	if err := value.Decode(&id); err != nil {
		return err
	}
	if id == 0 {
		*t = nil
		return nil
	}
	*t = tileStack{id}
	return nil
}

// LoadMap reads a client map file.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %s: %w", path, err)
	}

	m, err := ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("loading map %s: %w", path, err)
	}

	slog.Info("map loaded",
		"path", path,
		"width", m.width,
		"height", m.height,
		"doors", len(m.doors),
		"checkpoints", len(m.checkpoints))
	return m, nil
}

// ParseMap decodes map data and builds the collision and plateau layers.
func ParseMap(data []byte) (*Map, error) {
	var f mapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing map: %w", err)
	}

	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("map size %dx%d: %w", f.Width, f.Height, ErrInvalidMap)
	}
	if f.TileSize <= 0 {
		f.TileSize = model.DefaultCellSize
	}
	cells := f.Width * f.Height
	if len(f.Data) != 0 && len(f.Data) != cells {
		return nil, fmt.Errorf("data layer has %d cells, want %d: %w", len(f.Data), cells, ErrInvalidMap)
	}

	m := NewMap(f.Width, f.Height, f.TileSize)
	for i, stack := range f.Data {
		m.tiles[i] = stack
	}

	for _, idx := range f.Collisions {
		if idx < 0 || idx >= cells {
			return nil, fmt.Errorf("collision index %d: %w", idx, ErrInvalidMap)
		}
		x, y := m.GridPosition(idx)
		m.collision[y][x] = true
	}
	for _, idx := range f.Blocking {
		if idx < 0 || idx >= cells {
			continue
		}
		x, y := m.GridPosition(idx)
		m.collision[y][x] = true
	}
	for _, idx := range f.Plateau {
		if idx < 0 || idx >= cells {
			continue
		}
		x, y := m.GridPosition(idx)
		m.plateau[y][x] = true
	}

	for _, id := range f.High {
		m.high.Put(id)
	}

	for key, a := range f.Animated {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("animated tile id %q: %w", key, ErrInvalidMap)
		}
		m.SetTileAnimation(id, TileAnimation{
			Length: a.Length,
			Delay:  time.Duration(a.Delay) * time.Millisecond,
		})
	}

	for _, d := range f.Doors {
		m.AddDoor(d.X, d.Y, Door{
			X:           d.TargetX,
			Y:           d.TargetY,
			Orientation: model.ParseOrientation(d.To),
			CameraX:     d.CameraX,
			CameraY:     d.CameraY,
			Portal:      d.Portal == 1,
		})
	}

	for _, c := range f.Checkpoints {
		m.AddCheckpoint(Checkpoint{
			ID:   c.ID,
			Area: image.Rect(c.X, c.Y, c.X+c.W, c.Y+c.H),
		})
	}

	return m, nil
}
