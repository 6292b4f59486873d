package Transport1D

import (
	"context"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/netsolver/InputParameters"
	"github.com/notargets/netsolver/comm"
)

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (sw *syncWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}

// SolveLocal runs the given number of workers as goroutines connected by an
// in-process network. The first error from any worker closes the network,
// which releases the others, and is returned. Solvers are indexed by rank.
func SolveLocal(ctx context.Context, workers int, ip *InputParameters.SolverParameters,
	tinit, xinit BoundaryFunc, f SourceFunc, logOut io.Writer) (solvers []*Solver, calcTimes []time.Duration, err error) {
	if logOut == nil {
		logOut = io.Discard
	}
	var (
		ln = comm.NewLocalNetwork(workers)
		lw = &syncWriter{w: logOut}
	)
	defer ln.Close()
	solvers = make([]*Solver, workers)
	calcTimes = make([]time.Duration, workers)
	for rank := range solvers {
		if solvers[rank], err = NewSolver(ln.Comm(rank), ip, lw); err != nil {
			return nil, nil, err
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	go func() {
		<-gctx.Done()
		ln.Close()
	}()
	for rank := range solvers {
		g.Go(func() (err error) {
			calcTimes[rank], err = solvers[rank].Solve(tinit, xinit, f)
			return
		})
	}
	if err = g.Wait(); err != nil {
		return nil, nil, err
	}
	return
}
