package sim

import (
	"sync"

	"github.com/udisondev/tileworld/internal/model"
)

// Outbox receives the intents the simulation wants to tell the server about.
// Methods are called from the tick goroutine.
type Outbox interface {
	Moved(x, y int)
	LootMoved(item model.ID, x, y int)
	Attacked(target model.ID)
	Zoned()
	Aggroed(mob model.ID)
	Hit(target model.ID)
	Hurt(attacker model.ID)
	Teleported(x, y int)
	Checkpoint(id int)
	Looted(item model.ID)
	Opened(chest model.ID)
	Talked(npc model.ID)
}

// NopOutbox drops every intent.
type NopOutbox struct{}

func (NopOutbox) Moved(int, int) {}
func (NopOutbox) LootMoved(model.ID, int, int) {}
func (NopOutbox) Attacked(model.ID) {}
func (NopOutbox) Zoned() {}
func (NopOutbox) Aggroed(model.ID) {}
func (NopOutbox) Hit(model.ID) {}
func (NopOutbox) Hurt(model.ID) {}
func (NopOutbox) Teleported(int, int) {}
func (NopOutbox) Checkpoint(int) {}
func (NopOutbox) Looted(model.ID) {}
func (NopOutbox) Opened(model.ID) {}
func (NopOutbox) Talked(model.ID) {}

// IntentKind names an outbox method.
type IntentKind string

const (
	IntentMoved      IntentKind = "moved"
	IntentLootMoved  IntentKind = "loot_moved"
	IntentAttacked   IntentKind = "attacked"
	IntentZoned      IntentKind = "zoned"
	IntentAggroed    IntentKind = "aggroed"
	IntentHit        IntentKind = "hit"
	IntentHurt       IntentKind = "hurt"
	IntentTeleported IntentKind = "teleported"
	IntentCheckpoint IntentKind = "checkpoint"
	IntentLooted     IntentKind = "looted"
	IntentOpened     IntentKind = "opened"
	IntentTalked     IntentKind = "talked"
)

// Intent is one recorded outbox call. Fields a kind does not carry stay zero.
type Intent struct {
	Kind       IntentKind
	ID         model.ID
	X, Y       int
	Checkpoint int
}

// RecordingOutbox keeps every intent in call order. Safe for concurrent reads.
type RecordingOutbox struct {
	mu      sync.Mutex
	intents []Intent
}

// NewRecordingOutbox creates an empty recorder.
func NewRecordingOutbox() *RecordingOutbox {
	return &RecordingOutbox{}
}

func (o *RecordingOutbox) record(in Intent) {
	o.mu.Lock()
	o.intents = append(o.intents, in)
	o.mu.Unlock()
}

// Intents returns a copy of everything recorded so far.
func (o *RecordingOutbox) Intents() []Intent {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Intent, len(o.intents))
	copy(out, o.intents)
	return out
}

// Kinds returns the kinds of the recorded intents in order.
func (o *RecordingOutbox) Kinds() []IntentKind {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]IntentKind, len(o.intents))
	for i, in := range o.intents {
		out[i] = in.Kind
	}
	return out
}

// Count returns how many intents of kind were recorded.
func (o *RecordingOutbox) Count(kind IntentKind) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, in := range o.intents {
		if in.Kind == kind {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded.
func (o *RecordingOutbox) Reset() {
	o.mu.Lock()
	o.intents = nil
	o.mu.Unlock()
}

func (o *RecordingOutbox) Moved(x, y int) {
	o.record(Intent{Kind: IntentMoved, X: x, Y: y})
}

func (o *RecordingOutbox) LootMoved(item model.ID, x, y int) {
	o.record(Intent{Kind: IntentLootMoved, ID: item, X: x, Y: y})
}

func (o *RecordingOutbox) Attacked(target model.ID) {
	o.record(Intent{Kind: IntentAttacked, ID: target})
}

func (o *RecordingOutbox) Zoned() {
	o.record(Intent{Kind: IntentZoned})
}

func (o *RecordingOutbox) Aggroed(mob model.ID) {
	o.record(Intent{Kind: IntentAggroed, ID: mob})
}

func (o *RecordingOutbox) Hit(target model.ID) {
	o.record(Intent{Kind: IntentHit, ID: target})
}

func (o *RecordingOutbox) Hurt(attacker model.ID) {
	o.record(Intent{Kind: IntentHurt, ID: attacker})
}

func (o *RecordingOutbox) Teleported(x, y int) {
	o.record(Intent{Kind: IntentTeleported, X: x, Y: y})
}

func (o *RecordingOutbox) Checkpoint(id int) {
	o.record(Intent{Kind: IntentCheckpoint, Checkpoint: id})
}

func (o *RecordingOutbox) Looted(item model.ID) {
	o.record(Intent{Kind: IntentLooted, ID: item})
}

func (o *RecordingOutbox) Opened(chest model.ID) {
	o.record(Intent{Kind: IntentOpened, ID: chest})
}

func (o *RecordingOutbox) Talked(npc model.ID) {
	o.record(Intent{Kind: IntentTalked, ID: npc})
}
