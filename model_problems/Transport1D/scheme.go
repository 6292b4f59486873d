package Transport1D

func (s *Solver) fillLayer(k int) {
	// k - time
	// m - space
	for m := 1; m <= s.taskWidth; m++ {
		s.U.Set(k, m, s.crossScheme(k, m))
	}
}

// crossScheme steps one cell from the two previous rows:
//
//	U(k+1,m) = U(k-1,m) + 2*dt*f(t_k,x_m) + (U(k,m-1) - U(k,m+1))*dt*c/dx
//
// For the first row U(k-1,m) lies outside the grid and reads as zero.
func (s *Solver) crossScheme(t, x int) float64 {
	var (
		U     = s.U
		k     = t - 1 // previous layer
		m     = x
		time  = s.ip.TStep * float64(k)
		coord = s.ip.XStep * float64(s.globalColumn(m))
	)
	return U.At(k-1, m) + 2*s.ip.TStep*s.f(time, coord) +
		(U.At(k, m-1)-U.At(k, m+1))*s.ip.TStep*s.ip.C/s.ip.XStep
}
