package comm

// LocalNetwork connects Size() workers running as goroutines of one process
type LocalNetwork struct {
	boxes []*mailbox
}

func NewLocalNetwork(size int) (ln *LocalNetwork) {
	if size < 1 {
		panic("local network needs at least one rank")
	}
	ln = &LocalNetwork{
		boxes: make([]*mailbox, size),
	}
	for n := range ln.boxes {
		ln.boxes[n] = newMailbox()
	}
	return
}

func (ln *LocalNetwork) Size() int { return len(ln.boxes) }

func (ln *LocalNetwork) Comm(rank int) *LocalComm {
	if err := checkRank(rank, ln.Size()); err != nil {
		panic(err)
	}
	return &LocalComm{net: ln, rank: rank}
}

// Close makes every pending and future Recv without a queued message return ErrClosed
func (ln *LocalNetwork) Close() {
	for _, mb := range ln.boxes {
		mb.close(ErrClosed)
	}
}

type LocalComm struct {
	net  *LocalNetwork
	rank int
}

func (c *LocalComm) Rank() int { return c.rank }
func (c *LocalComm) Size() int { return c.net.Size() }

func (c *LocalComm) Send(dst, tag int, data []float64) error {
	if err := checkRank(dst, c.Size()); err != nil {
		return err
	}
	msg := make([]float64, len(data))
	copy(msg, data)
	return c.net.boxes[dst].post(c.rank, tag, msg)
}

func (c *LocalComm) Recv(src, tag int, data []float64) error {
	if err := checkRank(src, c.Size()); err != nil {
		return err
	}
	return receiveInto(c.net.boxes[c.rank], src, tag, data)
}
