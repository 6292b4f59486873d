package Transport1D

// The default model problem: no source and unit initial conditions
func ZeroSource(t, x float64) float64 { return 0 }
func UnitBoundary(float64) float64    { return 1 }
