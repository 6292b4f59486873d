package Transport1D

import (
	"fmt"

	"github.com/notargets/netsolver/utils"
)

func (s *Solver) setRange(from, to int) {
	s.from = from
	s.to = to
	s.taskWidth = to - from
}

func (s *Solver) splitTask() error {
	if s.rank == coordinator {
		return s.sendTask()
	}
	return s.receiveTask()
}

// sendTask partitions the columns and sends every other worker its range and
// the ranks of the workers on either side of it
func (s *Solver) sendTask() (err error) {
	var (
		pm = utils.NewPartitionMap(s.size, s.netWidth)
		nt utils.NeighborTable
	)
	if nt, err = utils.NewNeighborTable(pm); err != nil {
		return
	}
	if pm.Partitions[coordinator][0] != 0 {
		return fmt.Errorf("[%d] coordinator must own column 0, has range %v",
			s.rank, pm.Partitions[coordinator])
	}
	s.tasks = pm.Partitions
	s.setRange(pm.GetBucketRange(coordinator))
	s.neighbors = nt[coordinator]
	for rank := 0; rank < s.size; rank++ {
		if rank == coordinator {
			continue
		}
		kMin, kMax := pm.GetBucketRange(rank)
		msg := []float64{
			float64(kMin), float64(kMax),
			float64(nt[rank].Left), float64(nt[rank].Right),
		}
		if err = s.comm.Send(rank, int(TagTask), msg); err != nil {
			return fmt.Errorf("[%d] sending task to %d: %w", s.rank, rank, err)
		}
	}
	return
}

func (s *Solver) receiveTask() (err error) {
	msg := make([]float64, 4)
	if err = s.comm.Recv(coordinator, int(TagTask), msg); err != nil {
		return fmt.Errorf("[%d] receiving task: %w", s.rank, err)
	}
	var (
		from, to    = int(msg[0]), int(msg[1])
		left, right = int(msg[2]), int(msg[3])
	)
	if from < 0 || to < from || to > s.netWidth {
		return fmt.Errorf("[%d] received invalid range [%d,%d) for %d columns",
			s.rank, from, to, s.netWidth)
	}
	// The halo layout assumes a neighbor on every side that is not a grid edge
	if (left == utils.NoNeighbor) != (from == 0) || (right == utils.NoNeighbor) != (to == s.netWidth) {
		return fmt.Errorf("[%d] neighbors (%d,%d) inconsistent with range [%d,%d)",
			s.rank, left, right, from, to)
	}
	s.setRange(from, to)
	s.neighbors = utils.Neighbors{Left: left, Right: right}
	return
}
