package comm

import "sync"

type mailKey struct {
	src, tag int
}

// mailbox holds the unbounded incoming queues of one rank, one FIFO per
// (source, tag)
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queues map[mailKey][][]float64
	err    error // non-nil once closed
}

func newMailbox() *mailbox {
	mb := &mailbox{
		queues: make(map[mailKey][][]float64),
	}
	mb.cond = sync.NewCond(&mb.mu)
	return mb
}

func (mb *mailbox) post(src, tag int, msg []float64) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.err != nil {
		return mb.err
	}
	key := mailKey{src, tag}
	mb.queues[key] = append(mb.queues[key], msg)
	mb.cond.Broadcast()
	return nil
}

func (mb *mailbox) take(src, tag int) (msg []float64, err error) {
	key := mailKey{src, tag}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for len(mb.queues[key]) == 0 {
		if mb.err != nil {
			return nil, mb.err
		}
		mb.cond.Wait()
	}
	q := mb.queues[key]
	msg = q[0]
	q[0] = nil
	if len(q) == 1 {
		delete(mb.queues, key)
	} else {
		mb.queues[key] = q[1:]
	}
	return
}

// close wakes every blocked receiver, messages already queued stay readable
func (mb *mailbox) close(err error) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.err == nil {
		mb.err = err
	}
	mb.cond.Broadcast()
}

func receiveInto(mb *mailbox, src, tag int, data []float64) error {
	msg, err := mb.take(src, tag)
	if err != nil {
		return err
	}
	if len(msg) != len(data) {
		return SizeMismatch{Source: src, Tag: tag, Want: len(data), Received: len(msg)}
	}
	copy(data, msg)
	return nil
}
