package clock

import (
	"sync/atomic"

	id "vouch/pkg/domain"
)

// Logical is the process-local stand-in for the substrate's global order: an
// atomic counter ticked once per mutating call. Every tick is unique and
// strictly increasing, which is all the data model asks of its timestamps.
type Logical struct {
	last atomic.Uint64
}

func NewLogical() *Logical {
	return &Logical{}
}

// Next returns the next tick.
func (c *Logical) Next() id.LogicalTime {
	return id.LogicalTime(c.last.Add(1))
}

// Now returns the last tick handed out without advancing.
func (c *Logical) Now() id.LogicalTime {
	return id.LogicalTime(c.last.Load())
}
