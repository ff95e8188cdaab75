package signals

// connectionList is an intrusive doubly-linked list threaded through the
// connections themselves. root is a sentinel: root.next is the front,
// root.prev is the back, and &root marks the end of iteration.
type connectionList[E any] struct {
	root Connection[E]
	len  int
}

func (l *connectionList[E]) lazyInit() {
	if l.root.next == nil {
		l.root.next = &l.root
		l.root.prev = &l.root
	}
}

func (l *connectionList[E]) front() *Connection[E] {
	l.lazyInit()
	return l.root.next
}

func (l *connectionList[E]) end() *Connection[E] {
	return &l.root
}

func (l *connectionList[E]) pushBack(c *Connection[E]) {
	l.lazyInit()
	l.insertBefore(&l.root, c)
}

// insertBefore links c in front of at, which must be linked in l (or be the
// sentinel).
func (l *connectionList[E]) insertBefore(at, c *Connection[E]) {
	c.prev = at.prev
	c.next = at
	at.prev.next = c
	at.prev = c
	l.len++
}

// remove unlinks c. The observer and signal fields are left untouched.
func (l *connectionList[E]) remove(c *Connection[E]) {
	c.prev.next = c.next
	c.next.prev = c.prev
	c.prev = nil
	c.next = nil
	l.len--
}
