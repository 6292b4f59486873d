package Transport1D

import "fmt"

// gatherResults collects every worker's columns into the coordinator's grid,
// one message per worker and row. Row 0 is already complete at the coordinator.
func (s *Solver) gatherResults() (err error) {
	if s.size == 1 {
		return
	}
	for row := 1; row < s.netHeight; row++ {
		if s.rank == coordinator {
			for ri := 0; ri < s.size; ri++ {
				if ri == coordinator {
					continue
				}
				buf := s.U.RowView(row, s.tasks[ri][0], s.tasks[ri][1])
				if err = s.comm.Recv(ri, int(TagResult), buf); err != nil {
					return fmt.Errorf("[%d] gathering row %d from %d: %w", s.rank, row, ri, err)
				}
			}
		} else {
			buf := s.U.RowView(row, 1, 1+s.taskWidth)
			if err = s.comm.Send(coordinator, int(TagResult), buf); err != nil {
				return fmt.Errorf("[%d] sending row %d: %w", s.rank, row, err)
			}
		}
	}
	return
}
