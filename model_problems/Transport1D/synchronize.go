package Transport1D

import (
	"fmt"

	"github.com/notargets/netsolver/utils"
)

// synchronize exchanges the edge values of a freshly computed layer with the
// neighboring workers. Both sends go out before either receive so that two
// neighbors waiting on each other cannot deadlock.
func (s *Solver) synchronize(layer int) (err error) {
	if s.size == 1 {
		return
	}
	var (
		left, right = s.neighbors.Left, s.neighbors.Right
		buf         = make([]float64, 1)
	)
	sendSyn := func(dstRank, valIdx int, tag MsgTag) error {
		buf[0] = s.U.At(layer, valIdx)
		if err := s.comm.Send(dstRank, int(tag), buf); err != nil {
			return fmt.Errorf("[%d] layer %d send to %d: %w", s.rank, layer, dstRank, err)
		}
		return nil
	}
	recvSyn := func(srcRank, valIdx int, tag MsgTag) error {
		if err := s.comm.Recv(srcRank, int(tag), buf); err != nil {
			return fmt.Errorf("[%d] layer %d receive from %d: %w", s.rank, layer, srcRank, err)
		}
		s.U.Set(layer, valIdx, buf[0])
		return nil
	}
	if right != utils.NoNeighbor {
		if err = sendSyn(right, s.taskWidth, TagLeftSyn); err != nil {
			return
		}
	}
	if left != utils.NoNeighbor {
		if err = sendSyn(left, 1, TagRightSyn); err != nil {
			return
		}
	}
	if right != utils.NoNeighbor {
		if err = recvSyn(right, s.taskWidth+1, TagRightSyn); err != nil {
			return
		}
	}
	if left != utils.NoNeighbor {
		if err = recvSyn(left, 0, TagLeftSyn); err != nil {
			return
		}
	}
	return
}
