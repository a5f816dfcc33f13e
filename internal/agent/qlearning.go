// Package agent implements tabular Q-learning over a discretized view of
// the environment observation.
package agent

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/LordKelvin144/ToyCarGym/internal/physics"
)

// Hyperparameters
const (
	Alpha      = 0.1    // Learning Rate
	Gamma      = 0.99   // Discount Factor
	MinEpsilon = 0.01   // Exploration floor
	Decay      = 0.9995 // Epsilon decay per action
)

// maxRays bounds the number of lidar readings a State can hold. The state
// key must be a comparable fixed-size value to serve as a map key.
const maxRays = 32

// Chunking maps a continuous reading to a bin index via sorted thresholds.
// A reading below the first threshold is bin 0; above the last, bin len.
type Chunking struct {
	Thresholds []float64
}

// Chunk returns the bin index of the reading.
func (c Chunking) Chunk(v float64) int {
	return sort.SearchFloat64s(c.Thresholds, v)
}

// NChunks is the number of bins the chunking produces.
func (c Chunking) NChunks() int {
	return len(c.Thresholds) + 1
}

// Discretizer converts an observation vector into a tabular State.
type Discretizer struct {
	NRays int
	Lidar Chunking
	Speed Chunking
	Steer Chunking
}

// NewDiscretizer builds bins proportional to the sensor range and the
// vehicle limits.
func NewDiscretizer(nRays int, maxRange, maxSpeed, maxSteer float64) Discretizer {
	return Discretizer{
		NRays: nRays,
		Lidar: Chunking{Thresholds: []float64{0.1 * maxRange, 0.25 * maxRange, 0.5 * maxRange}},
		Speed: Chunking{Thresholds: []float64{0.1 * maxSpeed, 0.4 * maxSpeed, 0.7 * maxSpeed}},
		Steer: Chunking{Thresholds: []float64{-0.5 * maxSteer, -0.1 * maxSteer, 0.1 * maxSteer, 0.5 * maxSteer}},
	}
}

// State is the discretized observation: per-ray distance bins plus speed
// and steering bins.
type State struct {
	Lidar [maxRays]int8
	Speed int8
	Steer int8
}

// Discretize converts an observation laid out as scan ++ steer ++ speed
// (the environment's layout with ObserveDelta and ObserveSpeed enabled).
// Missing trailing entries leave the corresponding bins at zero.
func (d Discretizer) Discretize(obs []float64) State {
	var s State
	n := d.NRays
	if n > maxRays {
		n = maxRays
	}
	for i := 0; i < n && i < len(obs); i++ {
		s.Lidar[i] = int8(d.Lidar.Chunk(obs[i]))
	}
	if len(obs) > d.NRays {
		s.Steer = int8(d.Steer.Chunk(obs[d.NRays]))
	}
	if len(obs) > d.NRays+1 {
		s.Speed = int8(d.Speed.Chunk(obs[d.NRays+1]))
	}
	return s
}

// QTable stores the Q-values for state-action pairs.
type QTable map[State][physics.ActionCount]float64

// Agent selects actions and learns from transitions.
type Agent interface {
	SelectAction(state State) int
	Learn(state State, action int, reward float64, nextState State, terminal bool)
	DebugInfoStr() string
}

// QAgent is an epsilon-greedy tabular Q-learner. The RNG is an explicit
// seeded field, so two agents never share exploration streams.
type QAgent struct {
	QTable  QTable
	Epsilon float64
	rng     *rand.Rand
}

// NewAgent returns a fresh agent with full exploration.
func NewAgent(seed int64) *QAgent {
	return &QAgent{
		QTable:  make(QTable),
		Epsilon: 1.0,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// SelectAction chooses an action using the epsilon-greedy policy and decays
// epsilon.
func (a *QAgent) SelectAction(state State) int {
	a.Epsilon = math.Max(a.Epsilon*Decay, MinEpsilon)

	if a.rng.Float64() < a.Epsilon {
		return a.rng.Intn(int(physics.ActionCount))
	}

	qValues, exists := a.QTable[state]
	if !exists {
		return a.rng.Intn(int(physics.ActionCount)) // Unknown state, explore
	}

	bestAction := 0
	maxQ := math.Inf(-1)

	// Random tie-breaking
	start := a.rng.Intn(int(physics.ActionCount))
	for i := 0; i < int(physics.ActionCount); i++ {
		idx := (start + i) % int(physics.ActionCount)
		if qValues[idx] > maxQ {
			maxQ = qValues[idx]
			bestAction = idx
		}
	}
	return bestAction
}

// Learn updates the Q-Table based on the transition. Terminal transitions
// bootstrap from the reward alone.
func (a *QAgent) Learn(state State, action int, reward float64, nextState State, terminal bool) {
	qValues := a.QTable[state]
	currentQ := qValues[action]

	maxNextQ := 0.0
	if !terminal {
		if nextQValues, exists := a.QTable[nextState]; exists {
			maxNextQ = math.Inf(-1)
			for _, q := range nextQValues {
				if q > maxNextQ {
					maxNextQ = q
				}
			}
		}
	}

	// Q(s,a) = Q(s,a) + Alpha * (R + Gamma * maxQ(s',a') - Q(s,a))
	qValues[action] = currentQ + Alpha*(reward+Gamma*maxNextQ-currentQ)
	a.QTable[state] = qValues
}

func (a *QAgent) DebugInfoStr() string {
	return fmt.Sprintf("Agent Type: Q-Table\nQ-Table Size: %d\nEpsilon: %.3f", len(a.QTable), a.Epsilon)
}
