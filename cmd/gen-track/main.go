// Command gen-track generates a seeded track and writes its boundary
// polylines to a CSV file with columns left_x,left_y,right_x,right_y.
package main

import (
	"encoding/csv"
	"flag"
	"math/rand"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/LordKelvin144/ToyCarGym/internal/track"
)

func main() {
	seed := flag.Int64("seed", 1, "track generation seed")
	segments := flag.Int("segments", 200, "boundary segments per side")
	out := flag.String("out", "track.csv", "output CSV path")
	flag.Parse()

	logger := log.New(os.Stderr)

	rng := rand.New(rand.NewSource(*seed))
	t := track.Generate(rng, track.DefaultConfig())
	left, right := t.SampleBoundaries(*segments)

	f, err := os.Create(*out)
	if err != nil {
		logger.Fatal("create output", "err", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"left_x", "left_y", "right_x", "right_y"}); err != nil {
		logger.Fatal("write header", "err", err)
	}
	for i := range left {
		record := []string{
			formatFloat(left[i].X), formatFloat(left[i].Y),
			formatFloat(right[i].X), formatFloat(right[i].Y),
		}
		if err := w.Write(record); err != nil {
			logger.Fatal("write record", "err", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.Fatal("flush", "err", err)
	}

	logger.Info("track written", "path", *out, "points_per_side", len(left), "length_m", int(t.TotalLength()))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
