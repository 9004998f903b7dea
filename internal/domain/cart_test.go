package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	paneer = MenuItem{ItemID: "i1", Name: "Paneer Wrap", UnitPrice: 8000, IsAvailable: true}
	chai   = MenuItem{ItemID: "i2", Name: "Masala Chai", UnitPrice: 2000, IsAvailable: true}
	dosa   = MenuItem{ItemID: "i3", Name: "Dosa", UnitPrice: 6000, IsAvailable: true}
)

func recomputeTotal(lines []CartLine) Money {
	var total Money
	for _, l := range lines {
		total += l.Item.UnitPrice * Money(l.Quantity)
	}
	return total
}

func TestCart_AddMergesSameKey(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(paneer, "s1"))
	require.NoError(t, c.Add(paneer, "s1"))
	require.NoError(t, c.Add(paneer, "s2"))

	assert.Len(t, c.Lines(), 2)
	assert.Equal(t, 2, c.Quantity("s1", "i1"))
	assert.Equal(t, 1, c.Quantity("s2", "i1"))
	assert.Equal(t, 3, c.ItemCount())
	assert.Equal(t, []string{"s1", "s2"}, c.StallIDs())
}

func TestCart_AddRejectsInvalidItems(t *testing.T) {
	c := NewCart()

	assert.ErrorIs(t, c.Add(MenuItem{UnitPrice: 100}, "s1"), ErrInvalidItem)
	assert.ErrorIs(t, c.Add(MenuItem{ItemID: "x"}, "s1"), ErrInvalidPrice)
	assert.ErrorIs(t, c.Add(MenuItem{ItemID: "x", UnitPrice: -5}, "s1"), ErrInvalidPrice)
	assert.ErrorIs(t, c.Add(chai, ""), ErrInvalidStall)
	assert.True(t, c.IsEmpty())
}

func TestCart_RemoveDecrementsThenDeletes(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(chai, "s1"))
	require.NoError(t, c.Add(chai, "s1"))

	c.Remove(chai, "s1")
	assert.Equal(t, 1, c.Quantity("s1", "i2"))

	c.Remove(chai, "s1")
	assert.Equal(t, 0, c.Quantity("s1", "i2"))
	assert.Empty(t, c.Lines())
}

func TestCart_RemoveAbsentLineIsNoop(t *testing.T) {
	c := NewCart()
	assert.NotPanics(t, func() { c.Remove(chai, "s1") })

	require.NoError(t, c.Add(dosa, "s1"))
	c.Remove(chai, "s1")
	c.Remove(dosa, "s2")

	assert.Equal(t, 1, c.ItemCount())
	assert.Equal(t, Money(6000), c.Total())
}

func TestCart_TotalMatchesRecomputation(t *testing.T) {
	items := []MenuItem{paneer, chai, dosa}
	stalls := []string{"s1", "s2"}
	r := rand.New(rand.NewSource(1))

	c := NewCart()
	for i := 0; i < 500; i++ {
		item := items[r.Intn(len(items))]
		stall := stalls[r.Intn(len(stalls))]
		if r.Intn(3) == 0 {
			c.Remove(item, stall)
		} else {
			require.NoError(t, c.Add(item, stall))
		}

		lines := c.Lines()
		require.Equal(t, recomputeTotal(lines), c.Total())
		for _, l := range lines {
			require.GreaterOrEqual(t, l.Quantity, 1)
		}
	}
}

func TestCart_Clear(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(paneer, "s1"))
	require.NoError(t, c.Add(chai, "s1"))

	c.Clear()

	assert.Equal(t, 0, c.ItemCount())
	assert.Equal(t, Money(0), c.Total())
	assert.True(t, c.IsEmpty())
}

func TestCart_LinesKeepInsertionOrder(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(dosa, "s1"))
	require.NoError(t, c.Add(paneer, "s1"))
	require.NoError(t, c.Add(chai, "s1"))
	c.Remove(paneer, "s1")

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "i3", lines[0].Item.ItemID)
	assert.Equal(t, "i2", lines[1].Item.ItemID)
}

func TestCart_Restore(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(dosa, "s9"))

	c.Restore([]CartLine{
		{StallID: "s1", Item: paneer, Quantity: 2},
		{StallID: "s1", Item: chai, Quantity: 0},
		{StallID: "s1", Item: paneer, Quantity: 1},
	})

	assert.Equal(t, 3, c.Quantity("s1", "i1"))
	assert.Equal(t, 0, c.Quantity("s9", "i3"))
	assert.Equal(t, Money(24000), c.Total())
}
