// Command train runs headless tabular Q-learning against the simulator.
// Episode truncation (the per-episode step cap) lives here, layered above
// the crash-only termination of the environment core.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/LordKelvin144/ToyCarGym/internal/agent"
	"github.com/LordKelvin144/ToyCarGym/internal/env"
)

func main() {
	seed := flag.Int64("seed", 42, "RNG seed for the environment and the agent")
	episodes := flag.Int("episodes", 2000, "number of training episodes")
	maxSteps := flag.Int("max-steps", 2000, "per-episode step cap (truncation)")
	logEvery := flag.Int("log-every", 50, "episodes between progress reports")
	flag.Parse()

	logger := log.New(os.Stderr)

	cfg := env.DefaultConfig()
	cfg.ObserveDelta = true
	cfg.ObserveSpeed = true

	e, err := env.New(cfg, *seed)
	if err != nil {
		logger.Fatal("create environment", "err", err)
	}

	nRays := e.ObservationDim() - 2 // scan ++ steer ++ speed
	disc := agent.NewDiscretizer(nRays, cfg.Lidar.MaxRange, cfg.Car.MaxSpeed, cfg.Car.MaxSteer)
	ag := agent.NewAgent(*seed)

	logger.Info("training", "episodes", *episodes, "seed", *seed, "observation_dim", e.ObservationDim())

	for ep := 1; ep <= *episodes; ep++ {
		e.Reset()
		state := disc.Discretize(e.Observe())

		total := 0.0
		steps := 0
		for steps < *maxSteps {
			action := ag.SelectAction(state)
			reward, done, err := e.Step(action)
			if err != nil {
				logger.Fatal("step", "err", err)
			}
			steps++
			total += reward

			next := disc.Discretize(e.Observe())
			ag.Learn(state, action, reward, next, done)
			state = next
			if done {
				break
			}
		}

		if ep%*logEvery == 0 {
			logger.Info("episode",
				"n", ep,
				"steps", steps,
				"return", fmt.Sprintf("%.1f", total),
				"epsilon", fmt.Sprintf("%.3f", ag.Epsilon),
				"states", len(ag.QTable))
		}
	}
}
