package Transport1D

import (
	"fmt"
	"io"
	"time"

	"github.com/notargets/netsolver/InputParameters"
	"github.com/notargets/netsolver/comm"
	"github.com/notargets/netsolver/utils"
)

// SourceFunc is the right hand side f(t,x) of du/dt + c*du/dx = f(t,x)
type SourceFunc func(t, x float64) float64

// BoundaryFunc is one of the initial conditions, u(0,x) or u(t,0)
type BoundaryFunc func(float64) float64

type MsgTag int

const (
	TagTask MsgTag = iota + 1
	TagLeftSyn
	TagRightSyn
	TagResult
)

// The coordinator owns column 0, seeds the time boundary and assembles the result
const coordinator = 0

// Solver is one worker of a cross scheme solve. Rows of the grid are stepped
// in sequence, the columns are split into contiguous ranges, one per worker.
type Solver struct {
	comm       comm.Communicator
	rank, size int
	ip         InputParameters.SolverParameters
	log        io.Writer

	netWidth, netHeight int
	// Indices [from, to) of the columns owned by this worker
	from, to  int
	taskWidth int
	neighbors utils.Neighbors
	// Coordinator only, column range of every rank
	tasks [][2]int

	f         SourceFunc
	spaceInit BoundaryFunc
	timeInit  BoundaryFunc

	U      *utils.GridBuffer
	solved bool
}

func NewSolver(c comm.Communicator, ip *InputParameters.SolverParameters, logOut io.Writer) (s *Solver, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	if logOut == nil {
		logOut = io.Discard
	}
	s = &Solver{
		comm:      c,
		rank:      c.Rank(),
		size:      c.Size(),
		ip:        *ip,
		log:       logOut,
		netWidth:  ip.DistributedSize(),
		netHeight: ip.EvolutionSize(),
	}
	if s.size < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, have %d", s.size)
	}
	if s.size > s.netWidth {
		return nil, fmt.Errorf("%d workers for %d grid columns, every worker needs at least one column",
			s.size, s.netWidth)
	}
	return
}

// Solve runs the whole computation and returns the time spent stepping rows.
// On return the coordinator's grid holds the complete solution.
func (s *Solver) Solve(tinit, xinit BoundaryFunc, f SourceFunc) (calcTime time.Duration, err error) {
	if s.solved {
		return 0, fmt.Errorf("[%d] solver has already run", s.rank)
	}
	s.solved = true
	s.timeInit, s.spaceInit, s.f = tinit, xinit, f
	if err = s.splitTask(); err != nil {
		return
	}
	s.printTask()
	s.initNet()
	start := time.Now()
	for layer := 1; layer < s.U.Height(); layer++ {
		s.fillLayer(layer)
		if err = s.synchronize(layer); err != nil {
			return
		}
	}
	calcTime = time.Since(start)
	err = s.gatherResults()
	return
}

func (s *Solver) printTask() {
	fmt.Fprintf(s.log, "[%d] Solving for c = %v\n"+
		"Limits: max X = %v; max T = %v;\n"+
		"Step: dx = %v; dt = %v;\n"+
		"From %d to %d\n",
		s.rank, s.ip.C, s.ip.XMax, s.ip.TMax, s.ip.XStep, s.ip.TStep, s.from, s.to)
}

// Dump writes the full grid as CSV, only the coordinator writes anything
func (s *Solver) Dump(w io.Writer) error {
	if s.rank != coordinator {
		return nil
	}
	if s.U == nil {
		return fmt.Errorf("[%d] nothing to dump, solve has not run", s.rank)
	}
	return s.U.WriteCSV(w)
}

func (s *Solver) Rank() int                  { return s.rank }
func (s *Solver) IsCoordinator() bool        { return s.rank == coordinator }
func (s *Solver) Range() (from, to int)      { return s.from, s.to }
func (s *Solver) TaskWidth() int             { return s.taskWidth }
func (s *Solver) Grid() *utils.GridBuffer    { return s.U }
func (s *Solver) Neighbors() utils.Neighbors { return s.neighbors }
