package domain

import "errors"

var (
	ErrInvalidItem  = errors.New("menu item has no id")
	ErrInvalidPrice = errors.New("menu item price must be positive")
	ErrInvalidStall = errors.New("stall id is required")
)

type CartKey struct {
	StallID string
	ItemID  string
}

type CartLine struct {
	StallID  string
	Item     MenuItem
	Quantity int
}

func (l CartLine) Key() CartKey {
	return CartKey{StallID: l.StallID, ItemID: l.Item.ItemID}
}

func (l CartLine) Subtotal() Money {
	return l.Item.UnitPrice * Money(l.Quantity)
}

// Cart holds at most one line per (stall, item). It is not safe for concurrent use.
type Cart struct {
	lines map[CartKey]*CartLine
	keys  []CartKey
}

func NewCart() *Cart {
	return &Cart{lines: make(map[CartKey]*CartLine)}
}

func (c *Cart) Add(item MenuItem, stallID string) error {
	if item.ItemID == "" {
		return ErrInvalidItem
	}
	if item.UnitPrice <= 0 {
		return ErrInvalidPrice
	}
	if stallID == "" {
		return ErrInvalidStall
	}

	key := CartKey{StallID: stallID, ItemID: item.ItemID}
	if line, ok := c.lines[key]; ok {
		line.Quantity++
		return nil
	}

	c.lines[key] = &CartLine{StallID: stallID, Item: item, Quantity: 1}
	c.keys = append(c.keys, key)

	return nil
}

// Remove takes one unit off the line and drops the line at zero. Absent lines are ignored.
func (c *Cart) Remove(item MenuItem, stallID string) {
	key := CartKey{StallID: stallID, ItemID: item.ItemID}
	line, ok := c.lines[key]
	if !ok {
		return
	}

	if line.Quantity > 1 {
		line.Quantity--
		return
	}

	delete(c.lines, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

func (c *Cart) Total() Money {
	var total Money
	for _, line := range c.lines {
		total += line.Subtotal()
	}

	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}

	return count
}

func (c *Cart) Quantity(stallID, itemID string) int {
	if line, ok := c.lines[CartKey{StallID: stallID, ItemID: itemID}]; ok {
		return line.Quantity
	}

	return 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Clear() {
	c.lines = make(map[CartKey]*CartLine)
	c.keys = nil
}

// Lines returns copies in insertion order.
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.keys))
	for _, key := range c.keys {
		lines = append(lines, *c.lines[key])
	}

	return lines
}

// StallIDs returns the distinct stalls in the cart, in order of first appearance.
func (c *Cart) StallIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, key := range c.keys {
		if !seen[key.StallID] {
			seen[key.StallID] = true
			ids = append(ids, key.StallID)
		}
	}

	return ids
}

// Restore replaces the cart content with previously persisted lines.
// Lines with a quantity below one are skipped.
func (c *Cart) Restore(lines []CartLine) {
	c.Clear()
	for _, line := range lines {
		if line.Quantity < 1 {
			continue
		}
		key := line.Key()
		if existing, ok := c.lines[key]; ok {
			existing.Quantity += line.Quantity
			continue
		}
		l := line
		c.lines[key] = &l
		c.keys = append(c.keys, key)
	}
}
