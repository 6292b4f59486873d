package InputParameters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolverParameters(t *testing.T) {
	{ // JSON config files are valid input
		var ip SolverParameters
		require.NoError(t, ip.Parse([]byte(`{
"x":0.5,
"t":0.25,
"X":4,
"T":2,
"c":1.5
}`)))
		assert.Equal(t, SolverParameters{XStep: 0.5, TStep: 0.25, XMax: 4, TMax: 2, C: 1.5}, ip)
		assert.Equal(t, 9, ip.EvolutionSize())
		assert.Equal(t, 9, ip.DistributedSize())
	}
	{ // YAML, upper and lower case keys are distinct
		var ip SolverParameters
		require.NoError(t, ip.Parse([]byte(`
x: 1.   # step along x
t: 0.3
X: 4
T: 1
c: -2
`)))
		assert.Equal(t, 1., ip.XStep)
		assert.Equal(t, 0.3, ip.TStep)
		assert.Equal(t, 4., ip.XMax)
		assert.Equal(t, 1., ip.TMax)
		assert.Equal(t, -2., ip.C)
		assert.Equal(t, 5, ip.EvolutionSize())
		assert.Equal(t, 5, ip.DistributedSize()) // ceil(3.33)+1
		var buf bytes.Buffer
		ip.Print(&buf)
		assert.Contains(t, buf.String(), "= c")
		assert.Contains(t, buf.String(), "[5 x 5]")
	}
	{ // Missing keys
		var ip SolverParameters
		err := ip.Parse([]byte("x: 1\nt: 1\nX: 4\nT: 4\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[c]")
	}
	{ // Bad values
		var ip SolverParameters
		assert.Error(t, ip.Parse([]byte("x: 0\nt: 1\nX: 4\nT: 4\nc: 1\n")))
		assert.Error(t, ip.Parse([]byte("x: 1\nt: -1\nX: 4\nT: 4\nc: 1\n")))
		assert.Error(t, ip.Parse([]byte("x: 1\nt: 1\nX: 4\nT: four\nc: 1\n")))
		assert.Error(t, ip.Parse([]byte("{x: 1")))
	}
}

func TestReadSolverParameters(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(fileName, []byte(`{"x":1,"t":1,"X":4,"T":4,"c":1}`), 0o644))
	ip, err := ReadSolverParameters(fileName)
	require.NoError(t, err)
	assert.Equal(t, 5, ip.EvolutionSize())
	_, err = ReadSolverParameters(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
