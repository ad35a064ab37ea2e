package sendqueue

import (
	"errors"
	"fmt"
)

// ErrQueueClosed is returned by Submit after Stop has been called.
var ErrQueueClosed = errors.New("sendqueue: queue closed")

// ErrQueueFull signals back-pressure: the shard stayed full for the whole
// enqueue timeout. Compare with errors.Is; inspect details via
// *QueueFullError.
var ErrQueueFull = errors.New("sendqueue: queue full")

// QueueFullError carries the state of the shard that rejected a Submit.
type QueueFullError struct {
	Shard    int
	Length   int
	Capacity int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("sendqueue: shard %d full (%d/%d)", e.Shard, e.Length, e.Capacity)
}

// Is lets errors.Is(err, ErrQueueFull) match a *QueueFullError.
func (e *QueueFullError) Is(target error) bool { return target == ErrQueueFull }
