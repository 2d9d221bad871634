package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/testutil"
)

func TestWorld_Engage(t *testing.T) {
	w := testutil.NewWorld(t, ".....")
	player := testutil.AddEntity(t, w, 1, model.KindWarrior, 0, 0)
	rat := testutil.AddEntity(t, w, 2, model.KindRat, 1, 0)
	bat := testutil.AddEntity(t, w, 3, model.KindBat, 2, 0)

	w.Engage(rat.ID, player.ID)
	w.Engage(bat.ID, player.ID)
	w.Engage(player.ID, rat.ID)

	assert.Equal(t, []*model.Entity{rat, bat}, w.Attackers(player.ID))
	assert.Empty(t, w.Attackers(rat.ID), "player links are one-way")
	assert.Same(t, rat, w.Target(player.ID))
	assert.True(t, w.IsAttackedBy(player.ID, bat.ID))

	w.Engage(bat.ID, rat.ID)
	assert.Equal(t, []*model.Entity{rat}, w.Attackers(player.ID), "re-engaging drops the old link")
	assert.Equal(t, []*model.Entity{bat}, w.Attackers(rat.ID))
}

func TestWorld_Disengage(t *testing.T) {
	w := testutil.NewWorld(t, "...")
	player := testutil.AddEntity(t, w, 1, model.KindWarrior, 0, 0)
	rat := testutil.AddEntity(t, w, 2, model.KindRat, 1, 0)

	w.Engage(rat.ID, player.ID)
	w.Disengage(rat.ID)

	assert.False(t, w.HasAttackers(player.ID))
	assert.Equal(t, model.NoID, rat.Character.Target)
	assert.Nil(t, w.Target(rat.ID))
}

func TestWorld_RemoveDropsRelations(t *testing.T) {
	w := testutil.NewWorld(t, "....")
	player := testutil.AddEntity(t, w, 1, model.KindWarrior, 0, 0)
	rat := testutil.AddEntity(t, w, 2, model.KindRat, 1, 0)
	bat := testutil.AddEntity(t, w, 3, model.KindBat, 2, 0)

	w.Engage(rat.ID, player.ID)
	w.Engage(bat.ID, player.ID)

	assert.NoError(t, w.Remove(rat.ID))
	assert.Equal(t, []*model.Entity{bat}, w.Attackers(player.ID))

	assert.NoError(t, w.Remove(player.ID))
	assert.Nil(t, w.Target(bat.ID), "dead target resolves to nil")
}
