// Package comm provides the point to point message passing used between
// solver workers. Each worker has a rank in [0, Size()), and messages are
// addressed by the peer's rank and an integer tag.
//
// Sends never wait for the matching receive: the payload is copied and queued
// at the receiver. Receives block until a message from the requested source
// with the requested tag is available. Messages between the same ordered pair
// of ranks carrying the same tag are delivered in send order, no ordering is
// kept across different tags or different pairs.
package comm

import (
	"errors"
	"fmt"
)

var ErrClosed = errors.New("comm: network closed")

type Communicator interface {
	Rank() int
	Size() int
	// Send queues a copy of data for rank dst, data may be reused on return
	Send(dst, tag int, data []float64) error
	// Recv blocks until a message from src with tag arrives and copies it into
	// data. The message length must equal len(data).
	Recv(src, tag int, data []float64) error
}

// SizeMismatch is returned by Recv when the message does not fit the buffer
type SizeMismatch struct {
	Source, Tag    int
	Want, Received int
}

func (e SizeMismatch) Error() string {
	return fmt.Sprintf("comm: message from rank %d with tag %d has %d values, expected %d",
		e.Source, e.Tag, e.Received, e.Want)
}

func checkRank(rank, size int) error {
	if rank < 0 || rank >= size {
		return fmt.Errorf("comm: rank %d out of range [0,%d)", rank, size)
	}
	return nil
}
