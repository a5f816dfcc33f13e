// Command viewer is an interactive ebiten client for the simulator. It only
// consumes the read-only export operations (ExportRoad, GraphicsState) and
// drives the environment through Step/Reset like any other caller.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/LordKelvin144/ToyCarGym/internal/agent"
	"github.com/LordKelvin144/ToyCarGym/internal/env"
	"github.com/LordKelvin144/ToyCarGym/internal/physics"
)

// Render window dimensions
const (
	WindowWidth  = 1200
	WindowHeight = 800
)

// Simulation settings
const (
	FastForwardSteps = 500  // Env steps per frame in fast training mode
	RoadSegments     = 400  // Boundary resampling for drawing
	ViewMargin       = 0.95 // Margin for fitting the track in the window
)

// Colors
var (
	ColorRoad    = color.RGBA{80, 80, 80, 255}
	ColorCar     = color.RGBA{255, 0, 0, 255}
	ColorHeading = color.RGBA{255, 255, 0, 255}
	ColorLidar   = color.RGBA{50, 155, 50, 90}
)

type Game struct {
	Env   *env.Environment
	Agent *agent.QAgent
	Disc  agent.Discretizer

	AIMode   bool
	Training bool // Fast forward

	Road     env.RoadExport
	Episodes int
	Return   float64 // Running return of the current episode

	// Rendering transform (world meters -> screen pixels, y flipped)
	ViewScale   float64
	ViewOffsetX float64
	ViewOffsetY float64
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.AIMode = !g.AIMode
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Training = !g.Training
	}

	steps := 1
	if g.Training && g.AIMode {
		steps = FastForwardSteps
	}
	for i := 0; i < steps; i++ {
		g.stepOnce()
	}
	return nil
}

func (g *Game) stepOnce() {
	action := int(physics.ActionCoast)
	var state agent.State

	if g.AIMode {
		state = g.Disc.Discretize(g.Env.Observe())
		action = g.Agent.SelectAction(state)
	} else {
		switch {
		case ebiten.IsKeyPressed(ebiten.KeyLeft):
			action = int(physics.ActionSteerLeft)
		case ebiten.IsKeyPressed(ebiten.KeyRight):
			action = int(physics.ActionSteerRight)
		case ebiten.IsKeyPressed(ebiten.KeyUp):
			action = int(physics.ActionAccelerate)
		case ebiten.IsKeyPressed(ebiten.KeyDown):
			action = int(physics.ActionBrake)
		}
	}

	reward, done, err := g.Env.Step(action)
	if err != nil {
		return
	}
	g.Return += reward

	if g.AIMode {
		next := g.Disc.Discretize(g.Env.Observe())
		g.Agent.Learn(state, action, reward, next, done)
	}

	if done {
		// Auto respawn for the agent, manual (R) for a human driver
		if g.AIMode || ebiten.IsKeyPressed(ebiten.KeyR) {
			g.respawn()
		}
	}
}

// respawn starts a new episode and refreshes the cached road geometry,
// since reset regenerates the track.
func (g *Game) respawn() {
	g.Env.Reset()
	g.Episodes++
	g.Return = 0
	g.Road, _ = g.Env.ExportRoad(RoadSegments)
	g.fitView()
}

// fitView recomputes the world-to-screen transform from the road bounds.
func (g *Game) fitView() {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range g.Road.LeftX {
		for _, p := range [][2]float64{
			{g.Road.LeftX[i], g.Road.LeftY[i]},
			{g.Road.RightX[i], g.Road.RightY[i]},
		} {
			minX = math.Min(minX, p[0])
			maxX = math.Max(maxX, p[0])
			minY = math.Min(minY, p[1])
			maxY = math.Max(maxY, p[1])
		}
	}

	scaleW := WindowWidth / (maxX - minX)
	scaleH := WindowHeight / (maxY - minY)
	g.ViewScale = math.Min(scaleW, scaleH) * ViewMargin
	g.ViewOffsetX = WindowWidth/2 - g.ViewScale*(minX+maxX)/2
	g.ViewOffsetY = WindowHeight/2 + g.ViewScale*(minY+maxY)/2
}

// toScreen maps world coordinates to screen pixels. World y points up,
// screen y points down.
func (g *Game) toScreen(x, y float64) (float32, float32) {
	return float32(x*g.ViewScale + g.ViewOffsetX), float32(-y*g.ViewScale + g.ViewOffsetY)
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Road boundaries
	for i := 0; i+1 < len(g.Road.LeftX); i++ {
		x0, y0 := g.toScreen(g.Road.LeftX[i], g.Road.LeftY[i])
		x1, y1 := g.toScreen(g.Road.LeftX[i+1], g.Road.LeftY[i+1])
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, ColorRoad, true)

		x0, y0 = g.toScreen(g.Road.RightX[i], g.Road.RightY[i])
		x1, y1 = g.toScreen(g.Road.RightX[i+1], g.Road.RightY[i+1])
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, ColorRoad, true)
	}

	gs := g.Env.GraphicsState()

	// Lidar rays
	cx, cy := g.toScreen(gs.LidarCenterX, gs.LidarCenterY)
	for i := range gs.LidarX {
		ex, ey := g.toScreen(gs.LidarX[i], gs.LidarY[i])
		vector.StrokeLine(screen, cx, cy, ex, ey, 1, ColorLidar, true)
	}

	// Car footprint
	var path vector.Path
	for i := range gs.CarX {
		sx, sy := g.toScreen(gs.CarX[i], gs.CarY[i])
		if i == 0 {
			path.MoveTo(sx, sy)
		} else {
			path.LineTo(sx, sy)
		}
	}
	path.Close()

	var cs ebiten.ColorScale
	cs.ScaleWithColor(ColorCar)
	vector.FillPath(screen, &path, nil, &vector.DrawPathOptions{
		AntiAlias:  true,
		ColorScale: cs,
	})

	// Heading marker: midpoint of the front edge
	fx := (gs.CarX[0] + gs.CarX[1]) / 2
	fy := (gs.CarY[0] + gs.CarY[1]) / 2
	tx, ty := g.toScreen(fx, fy)
	vector.StrokeLine(screen, cx, cy, tx, ty, 2, ColorHeading, true)

	// HUD
	vector.FillRect(screen, 0, 0, 170, 120, color.RGBA{0, 0, 0, 180}, true)
	msg := "STATUS MONITOR\n----------------\n"
	if g.AIMode {
		msg += "Mode:   AI (Agent)\n"
	} else {
		msg += "Mode:   Manual\n"
	}
	msg += fmt.Sprintf("t:       %.1fs\n", g.Env.T())
	msg += fmt.Sprintf("Return:  %.1f\n", g.Return)
	msg += fmt.Sprintf("Episode: %d\n", g.Episodes)
	msg += "\nA=AI  S=Fast  R=Respawn"
	ebitenutil.DebugPrint(screen, msg)

	if g.AIMode {
		ebitenutil.DebugPrintAt(screen, g.Agent.DebugInfoStr(), WindowWidth-160, 10)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return WindowWidth, WindowHeight
}

func main() {
	seed := flag.Int64("seed", 42, "environment seed")
	ai := flag.Bool("ai", false, "start in agent mode")
	flag.Parse()

	logger := log.New(os.Stderr)

	cfg := env.DefaultConfig()
	cfg.ObserveDelta = true
	cfg.ObserveSpeed = true

	e, err := env.New(cfg, *seed)
	if err != nil {
		logger.Fatal("create environment", "err", err)
	}

	nRays := e.ObservationDim() - 2
	game := &Game{
		Env:    e,
		Agent:  agent.NewAgent(*seed),
		Disc:   agent.NewDiscretizer(nRays, cfg.Lidar.MaxRange, cfg.Car.MaxSpeed, cfg.Car.MaxSteer),
		AIMode: *ai,
	}
	game.Road, _ = e.ExportRoad(RoadSegments)
	game.fitView()

	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowTitle("ToyCarGym")
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run", "err", err)
	}
}
