package domain

type MenuItem struct {
	ItemID      string
	Name        string
	UnitPrice   Money
	Description string
	ImageRef    string
	Category    string
	IsAvailable bool
}

type Stall struct {
	StallID   string
	StallName string
	Items     []MenuItem
}

func (s Stall) AvailableItems() []MenuItem {
	items := make([]MenuItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.IsAvailable {
			items = append(items, item)
		}
	}

	return items
}
