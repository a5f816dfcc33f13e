package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LordKelvin144/ToyCarGym/internal/physics"
)

func TestChunk(t *testing.T) {
	c := Chunking{Thresholds: []float64{1, 2, 3}}
	require.Equal(t, 4, c.NChunks())

	assert.Equal(t, 0, c.Chunk(0.5))
	assert.Equal(t, 1, c.Chunk(1.5))
	assert.Equal(t, 2, c.Chunk(2.5))
	assert.Equal(t, 3, c.Chunk(3.5))

	// A reading exactly on a threshold falls into the lower bin.
	assert.Equal(t, 0, c.Chunk(1.0))
}

func TestDiscretize(t *testing.T) {
	d := NewDiscretizer(3, 50, 15, 0.5)

	// scan ++ steer ++ speed
	obs := []float64{2.0, 20.0, 49.0, 0.0, 12.0}
	s := d.Discretize(obs)

	assert.Equal(t, int8(0), s.Lidar[0]) // below 0.1*50
	assert.Equal(t, int8(2), s.Lidar[1]) // between 0.25*50 and 0.5*50
	assert.Equal(t, int8(3), s.Lidar[2]) // beyond 0.5*50
	assert.Equal(t, int8(2), s.Steer)    // centered
	assert.Equal(t, int8(3), s.Speed)    // above 0.7*15

	// Unused ray slots stay zero so states from the same sensor compare.
	for i := 3; i < len(s.Lidar); i++ {
		assert.Equal(t, int8(0), s.Lidar[i])
	}
}

func TestDiscretizeScanOnly(t *testing.T) {
	d := NewDiscretizer(2, 50, 15, 0.5)
	s := d.Discretize([]float64{30, 30})
	assert.Equal(t, int8(2), s.Lidar[0])
	assert.Equal(t, int8(0), s.Steer)
	assert.Equal(t, int8(0), s.Speed)
}

func TestSelectActionRange(t *testing.T) {
	a := NewAgent(3)
	var s State
	for i := 0; i < 200; i++ {
		action := a.SelectAction(s)
		assert.GreaterOrEqual(t, action, 0)
		assert.Less(t, action, int(physics.ActionCount))
	}
	// Epsilon decays but never below the floor.
	assert.Less(t, a.Epsilon, 1.0)
	assert.GreaterOrEqual(t, a.Epsilon, MinEpsilon)
}

func TestSelectActionGreedy(t *testing.T) {
	a := NewAgent(3)
	a.Epsilon = MinEpsilon // decayed out; only the floor remains

	s := State{Speed: 1}
	a.QTable[s] = [physics.ActionCount]float64{0, 0, 7, 0, 0}

	// At the epsilon floor the best action dominates overwhelmingly.
	hits := 0
	for i := 0; i < 1000; i++ {
		if a.SelectAction(s) == 2 {
			hits++
		}
	}
	assert.Greater(t, hits, 950)
}

func TestLearnTerminal(t *testing.T) {
	a := NewAgent(1)
	s := State{Speed: 1}
	next := State{Speed: 2}

	// Terminal transitions ignore the next state's value entirely.
	a.QTable[next] = [physics.ActionCount]float64{100, 100, 100, 100, 100}
	a.Learn(s, 0, -100, next, true)
	assert.InDelta(t, Alpha*-100, a.QTable[s][0], 1e-12)
}

func TestLearnBootstrap(t *testing.T) {
	a := NewAgent(1)
	s := State{Speed: 1}
	next := State{Speed: 2}
	a.QTable[next] = [physics.ActionCount]float64{0, 5, 0, 0, 0}

	a.Learn(s, 3, 1, next, false)
	// Q = 0 + Alpha*(1 + Gamma*5 - 0)
	assert.InDelta(t, Alpha*(1+Gamma*5), a.QTable[s][3], 1e-12)

	// Other actions of the state stay untouched.
	assert.Equal(t, 0.0, a.QTable[s][0])
}

func TestLearnConvergesOnRepeatedReward(t *testing.T) {
	a := NewAgent(1)
	s := State{Speed: 1}
	terminalNext := State{Speed: 3}

	for i := 0; i < 500; i++ {
		a.Learn(s, 2, 10, terminalNext, true)
	}
	// Fixed point of the terminal update is the reward itself.
	assert.InDelta(t, 10.0, a.QTable[s][2], 1e-6)
}
