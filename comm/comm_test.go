package comm

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalNetwork(t *testing.T) {
	ln := NewLocalNetwork(3)
	c0, c1, c2 := ln.Comm(0), ln.Comm(1), ln.Comm(2)
	assert.Equal(t, 3, c1.Size())
	assert.Equal(t, 1, c1.Rank())
	{ // Per tag FIFO, tags are independent queues
		for i := 0; i < 5; i++ {
			require.NoError(t, c0.Send(1, 7, []float64{float64(i)}))
		}
		require.NoError(t, c0.Send(1, 8, []float64{42, 43}))
		buf2 := make([]float64, 2)
		require.NoError(t, c1.Recv(0, 8, buf2))
		assert.Equal(t, []float64{42, 43}, buf2)
		buf := make([]float64, 1)
		for i := 0; i < 5; i++ {
			require.NoError(t, c1.Recv(0, 7, buf))
			assert.Equal(t, float64(i), buf[0])
		}
	}
	{ // Payloads are copied on send
		data := []float64{1, 2}
		require.NoError(t, c2.Send(0, 1, data))
		data[0] = 100
		buf := make([]float64, 2)
		require.NoError(t, c0.Recv(2, 1, buf))
		assert.Equal(t, []float64{1, 2}, buf)
	}
	{ // Sources are distinguished
		require.NoError(t, c2.Send(1, 3, []float64{2}))
		require.NoError(t, c0.Send(1, 3, []float64{0}))
		buf := make([]float64, 1)
		require.NoError(t, c1.Recv(0, 3, buf))
		assert.Equal(t, 0., buf[0])
		require.NoError(t, c1.Recv(2, 3, buf))
		assert.Equal(t, 2., buf[0])
	}
	{ // Length must match
		require.NoError(t, c0.Send(2, 4, []float64{1, 2, 3}))
		err := c2.Recv(0, 4, make([]float64, 2))
		var sm SizeMismatch
		require.ErrorAs(t, err, &sm)
		assert.Equal(t, 3, sm.Received)
		assert.Equal(t, 2, sm.Want)
	}
	{ // Bad ranks
		assert.Error(t, c0.Send(3, 1, nil))
		assert.Error(t, c0.Recv(-1, 1, nil))
	}
}

func TestLocalNetworkBlockingRecv(t *testing.T) {
	ln := NewLocalNetwork(2)
	c0, c1 := ln.Comm(0), ln.Comm(1)
	done := make(chan float64)
	go func() {
		buf := make([]float64, 1)
		if err := c1.Recv(0, 1, buf); err != nil {
			close(done)
			return
		}
		done <- buf[0]
	}()
	select {
	case <-done:
		t.Fatal("receive returned before any send")
	case <-time.After(20 * time.Millisecond):
	}
	require.NoError(t, c0.Send(1, 1, []float64{3.5}))
	assert.Equal(t, 3.5, <-done)
}

func TestLocalNetworkClose(t *testing.T) {
	ln := NewLocalNetwork(2)
	c0, c1 := ln.Comm(0), ln.Comm(1)
	require.NoError(t, c0.Send(1, 1, []float64{1}))
	var (
		wg  sync.WaitGroup
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err = c0.Recv(1, 2, make([]float64, 1))
	}()
	ln.Close()
	wg.Wait()
	assert.ErrorIs(t, err, ErrClosed)
	// Already queued messages are still delivered
	buf := make([]float64, 1)
	assert.NoError(t, c1.Recv(0, 1, buf))
	assert.Equal(t, 1., buf[0])
	assert.ErrorIs(t, c1.Recv(0, 1, buf), ErrClosed)
	assert.ErrorIs(t, c1.Send(0, 1, buf), ErrClosed)
}

func reservePorts(t *testing.T, n int) (addrs []string) {
	for i := 0; i < n; i++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addrs = append(addrs, l.Addr().String())
		require.NoError(t, l.Close())
	}
	return
}

func TestTCPComm(t *testing.T) {
	addrs := reservePorts(t, 3)
	comms := make([]*TCPComm, 3)
	for r := range comms {
		var err error
		comms[r], err = NewTCPComm(r, addrs, 5*time.Second)
		require.NoError(t, err)
		defer comms[r].Close()
	}
	assert.Equal(t, 3, comms[2].Size())
	assert.Equal(t, 2, comms[2].Rank())
	const nMsg = 200
	var wg sync.WaitGroup
	for src := 0; src < 3; src++ {
		wg.Add(1)
		go func(src int) {
			defer wg.Done()
			for i := 0; i < nMsg; i++ {
				for dst := 0; dst < 3; dst++ {
					assert.NoError(t, comms[src].Send(dst, 5, []float64{float64(src), float64(i)}))
				}
			}
			assert.NoError(t, comms[src].Send((src+1)%3, 6, []float64{}))
		}(src)
	}
	for dst := 0; dst < 3; dst++ {
		buf := make([]float64, 2)
		for src := 0; src < 3; src++ {
			for i := 0; i < nMsg; i++ {
				require.NoError(t, comms[dst].Recv(src, 5, buf))
				assert.Equal(t, []float64{float64(src), float64(i)}, buf)
			}
		}
		require.NoError(t, comms[dst].Recv((dst+2)%3, 6, []float64{}))
	}
	wg.Wait()
}

func TestTCPCommBadRank(t *testing.T) {
	_, err := NewTCPComm(2, []string{"127.0.0.1:0", "127.0.0.1:0"}, time.Second)
	assert.Error(t, err)
}
