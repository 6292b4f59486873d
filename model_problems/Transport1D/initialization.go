package Transport1D

import "github.com/notargets/netsolver/utils"

// initNet allocates the local grid and applies both boundary conditions.
//
// Workers keep one halo column on each side for the neighbors' edge values.
// The coordinator instead holds the full grid width, column 0 carries the
// time boundary and is not stepped, so its task shrinks by one column.
func (s *Solver) initNet() {
	var (
		allocWidth = s.taskWidth + 2
		firstCol   = s.from - 1 // global column of local column 0
	)
	if s.from == 0 {
		s.taskWidth--
		allocWidth = s.netWidth
		firstCol = 0
	}
	if s.to == s.netWidth && s.from != 0 {
		allocWidth--
	}
	s.U = utils.NewGridBuffer(s.netHeight, allocWidth)

	// Time boundary
	if s.from == 0 {
		for ti := 0; ti < s.U.Height(); ti++ {
			s.U.Set(ti, 0, s.timeInit(float64(ti)*s.ip.TStep))
		}
	}
	// Space boundary, overwrites U(0,0) at the coordinator
	for xi := 0; xi < s.U.Width(); xi++ {
		s.U.Set(0, xi, s.spaceInit(float64(firstCol+xi)*s.ip.XStep))
	}
}

// globalColumn maps a local column index to its column in the full grid
func (s *Solver) globalColumn(m int) int {
	if s.from == 0 {
		return m
	}
	return s.from - 1 + m
}
