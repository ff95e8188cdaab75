package signals

import (
	"github.com/VladislavSG/signal/disposable"
)

// cursor is the iteration position of one Notify call in progress.
// Cursors of a signal form a stack through next, most recent first.
type cursor[E any] struct {
	pos    *Connection[E]
	signal *SignalImp[E]
	epoch  uint64
	next   *cursor[E]
}

// SignalImp dispatches events to its connections in the order they were
// connected. Observers may connect, disconnect, move connections, notify the
// same signal again or close it while a dispatch is running.
//
// SignalImp is not safe for concurrent use.
type SignalImp[E any] struct {
	members connectionList[E]
	top     *cursor[E]
	epoch   uint64
	closed  bool
}

func NewSignal[E any]() *SignalImp[E] {
	s := &SignalImp[E]{}
	s.members.lazyInit()
	return s
}

// Connect subscribes observer and returns the handle owning the subscription.
// On a closed signal the returned handle is already disconnected.
func (s *SignalImp[E]) Connect(observer Observer[E]) *Connection[E] {
	if s.closed {
		return &Connection[E]{}
	}
	return newConnection(s, observer)
}

func (s *SignalImp[E]) Attach(observer Observer[E]) disposable.Disposable {
	return s.Connect(observer)
}

// Len returns the number of live connections.
func (s *SignalImp[E]) Len() int {
	return s.members.len
}

// Notify invokes every observer connected before the call, in connection
// order. Observers connected while the call is running are not invoked by it.
// The first observer error stops the dispatch and is returned.
func (s *SignalImp[E]) Notify(event E) error {
	if s.closed {
		return nil
	}
	s.epoch++
	cur := &cursor[E]{
		pos:    s.members.front(),
		signal: s,
		epoch:  s.epoch,
		next:   s.top,
	}
	s.top = cur
	defer cur.pop()

	end := s.members.end()
	for cur.pos != end {
		c := cur.pos
		if c.epoch >= cur.epoch {
			// c and everything after it was connected during this dispatch
			return nil
		}
		cur.pos = c.next
		if err := c.observer(event); err != nil {
			return err
		}
		if cur.signal == nil {
			return nil
		}
	}
	return nil
}

func (cur *cursor[E]) pop() {
	if cur.signal != nil {
		cur.signal.top = cur.next
	}
}

// Close disconnects every connection and halts all dispatches in progress
// after their current observer returns. Once closed, Notify does nothing
// and Connect returns disconnected handles.
func (s *SignalImp[E]) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for cur := s.top; cur != nil; cur = cur.next {
		cur.signal = nil
	}
	s.top = nil
	s.members.lazyInit()
	end := s.members.end()
	for c := s.members.front(); c != end; {
		next := c.next
		c.Disconnect()
		c = next
	}
}

// Closed reports whether Close has been called.
func (s *SignalImp[E]) Closed() bool {
	return s.closed
}
