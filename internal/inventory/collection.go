package inventory

// Collection is an ordered, id-indexed view of items known to a caller.
// Workflows own their collection explicitly; nothing in the core keeps
// ambient shared state.
type Collection struct {
	items []Item
	index map[string]int
}

// NewCollection builds a collection preserving the given order.
func NewCollection(items ...Item) *Collection {
	c := &Collection{
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if _, ok := c.index[item.ID]; ok {
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// Len returns the number of items in the collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns a copy of the collection in order.
func (c *Collection) Items() []Item {
	if c == nil {
		return nil
	}
	cp := make([]Item, len(c.items))
	copy(cp, c.items)
	return cp
}

// Get returns the item with the given id, if present.
func (c *Collection) Get(id string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Replace swaps in a new snapshot for an item already present in the view.
// Items not in the view are ignored; a batch result for an unknown item must
// not invent local state.
func (c *Collection) Replace(item Item) bool {
	if c == nil {
		return false
	}
	i, ok := c.index[item.ID]
	if !ok {
		return false
	}
	c.items[i] = item
	return true
}

// Prepend inserts items at the front of the view, newest first, skipping ids
// already present.
func (c *Collection) Prepend(items ...Item) {
	if c == nil || len(items) == 0 {
		return
	}
	fresh := make([]Item, 0, len(items))
	for _, item := range items {
		if _, ok := c.index[item.ID]; ok {
			continue
		}
		fresh = append(fresh, item)
	}
	if len(fresh) == 0 {
		return
	}
	c.items = append(fresh, c.items...)
	c.index = make(map[string]int, len(c.items))
	for i, item := range c.items {
		c.index[item.ID] = i
	}
}
