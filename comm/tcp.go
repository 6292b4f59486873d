package comm

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const DefaultInitTimeout = 30 * time.Second

type hello struct {
	Rank int
}

type frame struct {
	Tag  int
	Data []float64
}

type tcpPeer struct {
	mu   sync.Mutex
	conn net.Conn
	enc  *gob.Encoder
}

// TCPComm is one rank of a network where every rank is a separate process
// listening on Addrs[rank]. Each ordered pair of ranks uses one connection,
// dialled by the sender on first use, which keeps per-tag send order.
type TCPComm struct {
	rank        int
	addrs       []string
	initTimeout time.Duration
	listener    net.Listener
	box         *mailbox

	mu      sync.Mutex
	peers   map[int]*tcpPeer
	inbound []net.Conn
	closed  bool
	wg      sync.WaitGroup
}

// NewTCPComm starts listening on addrs[rank]. Peers are dialled lazily, with
// retries until initTimeout expires so ranks may start in any order.
func NewTCPComm(rank int, addrs []string, initTimeout time.Duration) (c *TCPComm, err error) {
	if err = checkRank(rank, len(addrs)); err != nil {
		return
	}
	if initTimeout <= 0 {
		initTimeout = DefaultInitTimeout
	}
	c = &TCPComm{
		rank:        rank,
		addrs:       addrs,
		initTimeout: initTimeout,
		box:         newMailbox(),
		peers:       make(map[int]*tcpPeer),
	}
	if c.listener, err = net.Listen("tcp", addrs[rank]); err != nil {
		return nil, fmt.Errorf("comm: rank %d unable to listen on %s: %w", rank, addrs[rank], err)
	}
	c.wg.Add(1)
	go c.acceptLoop()
	return
}

func (c *TCPComm) Rank() int { return c.rank }
func (c *TCPComm) Size() int { return len(c.addrs) }

// Addr is the address actually bound, useful when listening on port 0
func (c *TCPComm) Addr() net.Addr { return c.listener.Addr() }

func (c *TCPComm) Send(dst, tag int, data []float64) (err error) {
	if err = checkRank(dst, c.Size()); err != nil {
		return
	}
	if dst == c.rank {
		msg := make([]float64, len(data))
		copy(msg, data)
		return c.box.post(c.rank, tag, msg)
	}
	var p *tcpPeer
	if p, err = c.peer(dst); err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err = p.enc.Encode(frame{Tag: tag, Data: data}); err != nil {
		return fmt.Errorf("comm: send to rank %d tag %d: %w", dst, tag, err)
	}
	return
}

func (c *TCPComm) Recv(src, tag int, data []float64) error {
	if err := checkRank(src, c.Size()); err != nil {
		return err
	}
	return receiveInto(c.box, src, tag, data)
}

func (c *TCPComm) Close() (err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	err = c.listener.Close()
	for _, p := range c.peers {
		_ = p.conn.Close()
	}
	for _, conn := range c.inbound {
		_ = conn.Close()
	}
	c.mu.Unlock()
	c.box.close(ErrClosed)
	c.wg.Wait()
	return
}

func (c *TCPComm) peer(dst int) (p *tcpPeer, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if p = c.peers[dst]; p != nil {
		return
	}
	var (
		conn     net.Conn
		deadline = time.Now().Add(c.initTimeout)
	)
	for {
		if conn, err = net.DialTimeout("tcp", c.addrs[dst], time.Second); err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("comm: rank %d unable to reach rank %d at %s: %w",
				c.rank, dst, c.addrs[dst], err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	p = &tcpPeer{conn: conn, enc: gob.NewEncoder(conn)}
	if err = p.enc.Encode(hello{Rank: c.rank}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("comm: handshake with rank %d: %w", dst, err)
	}
	c.peers[dst] = p
	return
}

func (c *TCPComm) acceptLoop() {
	defer c.wg.Done()
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			return
		}
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			_ = conn.Close()
			return
		}
		c.inbound = append(c.inbound, conn)
		c.mu.Unlock()
		c.wg.Add(1)
		go c.readLoop(conn)
	}
}

func (c *TCPComm) readLoop(conn net.Conn) {
	defer c.wg.Done()
	var (
		dec = gob.NewDecoder(conn)
		h   hello
	)
	if err := dec.Decode(&h); err != nil {
		c.fail(fmt.Errorf("comm: bad handshake from %s: %w", conn.RemoteAddr(), err))
		return
	}
	if checkRank(h.Rank, c.Size()) != nil {
		c.fail(fmt.Errorf("comm: handshake from unknown rank %d", h.Rank))
		return
	}
	for {
		var f frame
		if err := dec.Decode(&f); err != nil {
			// A peer hanging up after its last send is the normal end of a run
			if !errors.Is(err, io.EOF) {
				c.fail(fmt.Errorf("comm: receive from rank %d: %w", h.Rank, err))
			}
			return
		}
		if f.Data == nil {
			f.Data = []float64{}
		}
		if err := c.box.post(h.Rank, f.Tag, f.Data); err != nil {
			return
		}
	}
}

func (c *TCPComm) fail(err error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if !closed {
		c.box.close(err)
	}
}
