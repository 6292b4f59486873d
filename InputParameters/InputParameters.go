package InputParameters

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML (or JSON) input file
// Equation: du/dt + c*du/dx = f(t,x)
type SolverParameters struct {
	XStep float64 `json:"x"` // Step along x
	TStep float64 `json:"t"` // Step along t
	XMax  float64 `json:"X"` // Limit of x
	TMax  float64 `json:"T"` // Limit of t
	C     float64 `json:"c"` // Linear coefficient "c"
}

var requiredKeys = []string{"x", "t", "X", "T", "c"}

func (ip *SolverParameters) Parse(data []byte) (err error) {
	var keys map[string]interface{}
	if err = yaml.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("unable to parse solver parameters: %w", err)
	}
	var missing []string
	for _, key := range requiredKeys {
		if _, present := keys[key]; !present {
			missing = append(missing, key)
		}
	}
	if len(missing) != 0 {
		return fmt.Errorf("solver parameters missing %v", missing)
	}
	if err = yaml.Unmarshal(data, ip); err != nil {
		return fmt.Errorf("unable to parse solver parameters: %w", err)
	}
	return ip.Validate()
}

func (ip *SolverParameters) Validate() error {
	check := func(name string, val float64) error {
		if math.IsNaN(val) || math.IsInf(val, 0) || val <= 0 {
			return fmt.Errorf("solver parameter %s must be positive and finite, have %v", name, val)
		}
		return nil
	}
	for _, p := range []struct {
		name string
		val  float64
	}{{"x", ip.XStep}, {"t", ip.TStep}, {"X", ip.XMax}, {"T", ip.TMax}} {
		if err := check(p.name, p.val); err != nil {
			return err
		}
	}
	if math.IsNaN(ip.C) || math.IsInf(ip.C, 0) {
		return fmt.Errorf("solver parameter c must be finite, have %v", ip.C)
	}
	return nil
}

func ReadSolverParameters(fileName string) (ip *SolverParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return nil, fmt.Errorf("can't open config file: %w", err)
	}
	ip = &SolverParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	return
}

// EvolutionSize is the number of grid rows, which are stepped sequentially.
// Note that it is derived from the x limits while rows are advanced with the
// t step, and DistributedSize the reverse.
func (ip *SolverParameters) EvolutionSize() int {
	return int(math.Ceil(ip.XMax/ip.XStep)) + 1
}

// DistributedSize is the number of grid columns, which are split across workers
func (ip *SolverParameters) DistributedSize() int {
	return int(math.Ceil(ip.TMax/ip.TStep)) + 1
}

func (ip *SolverParameters) Print(w io.Writer) {
	values := map[string]float64{
		"x": ip.XStep, "t": ip.TStep, "X": ip.XMax, "T": ip.TMax, "c": ip.C,
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "%8.5f\t\t= %s\n", values[key], key)
	}
	fmt.Fprintf(w, "[%d x %d]\t\t= Grid rows x columns\n", ip.EvolutionSize(), ip.DistributedSize())
}
