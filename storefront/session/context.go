package session

import "sync"

// State is the provider value shared by storefront pages.
type State struct {
	SelectedAddressID string
	CartModalOpen     bool
}

// Context carries State explicitly between pages and notifies subscribers
// of every change.
type Context struct {
	mu     sync.Mutex
	state  State
	nextID int
	subs   map[int]chan State
}

func NewContext() *Context {
	return &Context{subs: make(map[int]chan State)}
}

func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Context) SelectedAddressID() string {
	return c.State().SelectedAddressID
}

func (c *Context) SetSelectedAddressID(id string) {
	c.update(func(s *State) { s.SelectedAddressID = id })
}

func (c *Context) CartModalOpen() bool {
	return c.State().CartModalOpen
}

func (c *Context) SetCartModalOpen(open bool) {
	c.update(func(s *State) { s.CartModalOpen = open })
}

// Subscribe returns a channel holding the latest State after each change.
// Slow readers only see the newest value.
func (c *Context) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan State, 1)
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
}

func (c *Context) update(fn func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	fn(&c.state)
	if c.state == prev {
		return
	}
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- c.state
	}
}
