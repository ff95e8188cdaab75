package signals

// Connection is the handle of a single subscription. The zero value is an
// unsubscribed handle. A Connection must not be copied after first use;
// ownership is transferred with Move or MoveFrom.
type Connection[E any] struct {
	noCopy   noCopy
	signal   *SignalImp[E]
	observer Observer[E]
	// signal epoch at connect time, see SignalImp.Notify
	epoch uint64
	prev  *Connection[E]
	next  *Connection[E]
}

func newConnection[E any](s *SignalImp[E], observer Observer[E]) *Connection[E] {
	c := &Connection[E]{
		signal:   s,
		observer: observer,
		epoch:    s.epoch,
	}
	s.members.pushBack(c)
	return c
}

// Connected reports whether the handle currently owns a live subscription.
func (c *Connection[E]) Connected() bool {
	return c.signal != nil
}

// Disconnect removes the subscription from its signal. Dispatches in progress
// on that signal, nested ones included, skip the observer from now on. The
// observer currently running, if it is this one, is not interrupted.
// Calling Disconnect on an unsubscribed handle does nothing.
func (c *Connection[E]) Disconnect() {
	s := c.signal
	if s == nil {
		return
	}
	for cur := s.top; cur != nil; cur = cur.next {
		if cur.pos == c {
			cur.pos = c.next
		}
	}
	s.members.remove(c)
	c.signal = nil
	c.observer = nil
}

// Dispose implements disposable.Disposable.
func (c *Connection[E]) Dispose() {
	c.Disconnect()
}

// Move transfers the subscription to a new handle which takes the exact place
// of c in notification order. c is left unsubscribed.
func (c *Connection[E]) Move() *Connection[E] {
	dst := &Connection[E]{}
	dst.MoveFrom(c)
	return dst
}

// MoveFrom drops the subscription held by c, if any, and takes over the one
// held by src at the same position. src is left unsubscribed.
func (c *Connection[E]) MoveFrom(src *Connection[E]) {
	if c == src {
		return
	}
	c.Disconnect()
	c.signal = src.signal
	c.observer = src.observer
	c.epoch = src.epoch
	s := c.signal
	if s == nil {
		src.observer = nil
		return
	}
	s.members.insertBefore(src, c)
	s.members.remove(src)
	for cur := s.top; cur != nil; cur = cur.next {
		if cur.pos == src {
			cur.pos = c
		}
	}
	src.signal = nil
	src.observer = nil
}

// noCopy makes go vet's copylocks check report copies of the embedding struct.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
