package cart

import "medcart/models"

// command is one state transition of the cart. Every mutation, optimistic or
// reconciling, goes through reduce.
type command interface {
	apply(items []models.CartItem) []models.CartItem
}

func reduce(state []models.CartItem, cmd command) []models.CartItem {
	return cmd.apply(clone(state))
}

type replaceAll struct {
	items []models.CartItem
	// keep overrides server quantities for lines with unsent local edits.
	keep map[string]int
	// adding names placeholder lines that stay until their add resolves.
	adding map[string]bool
}

func (c replaceAll) apply(items []models.CartItem) []models.CartItem {
	out := clone(c.items)
	for i := range out {
		if qty, ok := c.keep[out[i].ID]; ok {
			out[i].Quantity = qty
		}
	}
	for _, it := range items {
		if c.adding[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

type insertItem struct {
	item models.CartItem
}

func (c insertItem) apply(items []models.CartItem) []models.CartItem {
	return append(items, c.item)
}

type swapItem struct {
	id   string
	item models.CartItem
}

func (c swapItem) apply(items []models.CartItem) []models.CartItem {
	for i := range items {
		if items[i].ID == c.id {
			items[i] = c.item
			return items
		}
	}
	return append(items, c.item)
}

type dropItem struct {
	id string
}

func (c dropItem) apply(items []models.CartItem) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != c.id {
			out = append(out, it)
		}
	}
	return out
}

type setQuantity struct {
	id       string
	quantity int
}

func (c setQuantity) apply(items []models.CartItem) []models.CartItem {
	for i := range items {
		if items[i].ID == c.id {
			items[i].Quantity = c.quantity
		}
	}
	return items
}

// restoreItem puts a removed line back at its original position.
type restoreItem struct {
	item  models.CartItem
	index int
}

func (c restoreItem) apply(items []models.CartItem) []models.CartItem {
	for _, it := range items {
		if it.ID == c.item.ID {
			return items
		}
	}
	i := c.index
	if i < 0 || i > len(items) {
		i = len(items)
	}
	items = append(items, models.CartItem{})
	copy(items[i+1:], items[i:])
	items[i] = c.item
	return items
}

func clone(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
