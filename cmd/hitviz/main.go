// hitviz renders a hit-snapshot dump as a top-down SVG plan: one line per
// validated hit from attacker eye to victim position, colored by tier.
// The input is the JSON export of the audit store's hit_snapshots table.
//
//	hitviz -in hits.json -o hits.svg
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"
)

// Hit mirrors one exported hit_snapshots row.
type Hit struct {
	AttackerID  uint32  `json:"attacker_id"`
	VictimID    uint32  `json:"victim_id"`
	Tier        string  `json:"tier"`
	RayDistance float64 `json:"ray_distance"`
	EyeX        float64 `json:"eye_x"`
	EyeZ        float64 `json:"eye_z"`
	VictimX     float64 `json:"victim_x"`
	VictimZ     float64 `json:"victim_z"`
}

const (
	canvasSize = 800
	margin     = 40
	victimHalf = 3 // px, half-size of the victim marker
)

var tierColors = map[string]string{
	"primary":  "#2c7fb8",
	"limit":    "#fe9929",
	"fallback": "#d7301f",
}

func main() {
	var (
		in  = flag.String("in", "", "hit snapshot JSON dump")
		out = flag.String("o", "hits.svg", "output SVG path")
	)
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "input file required")
		os.Exit(2)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatal(err)
	}
	var hits []Hit
	if err := json.Unmarshal(data, &hits); err != nil {
		log.Fatalf("parsing %s: %v", *in, err)
	}
	if len(hits) == 0 {
		log.Fatal("no hits in dump")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	render(f, hits)
	log.Printf("rendered %d hits to %s", len(hits), *out)
}

func render(f *os.File, hits []Hit) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, h := range hits {
		minX = math.Min(minX, math.Min(h.EyeX, h.VictimX))
		maxX = math.Max(maxX, math.Max(h.EyeX, h.VictimX))
		minZ = math.Min(minZ, math.Min(h.EyeZ, h.VictimZ))
		maxZ = math.Max(maxZ, math.Max(h.EyeZ, h.VictimZ))
	}
	spanX, spanZ := maxX-minX, maxZ-minZ
	if spanX == 0 {
		spanX = 1
	}
	if spanZ == 0 {
		spanZ = 1
	}
	scale := math.Min(
		float64(canvasSize-2*margin)/spanX,
		float64(canvasSize-2*margin)/spanZ,
	)
	px := func(x float64) int { return margin + int((x-minX)*scale) }
	pz := func(z float64) int { return margin + int((z-minZ)*scale) }

	canvas := svg.New(f)
	canvas.Start(canvasSize, canvasSize)
	canvas.Rect(0, 0, canvasSize, canvasSize, "fill:#ffffff")

	for _, h := range hits {
		color, ok := tierColors[h.Tier]
		if !ok {
			color = "#999999"
		}
		canvas.Line(px(h.EyeX), pz(h.EyeZ), px(h.VictimX), pz(h.VictimZ),
			fmt.Sprintf("stroke:%s;stroke-width:1;stroke-opacity:0.6", color))
		canvas.Circle(px(h.EyeX), pz(h.EyeZ), 2, "fill:#444444")
		canvas.Rect(px(h.VictimX)-victimHalf, pz(h.VictimZ)-victimHalf,
			victimHalf*2, victimHalf*2,
			fmt.Sprintf("fill:%s;fill-opacity:0.8", color))
	}

	y := margin / 2
	for _, tier := range []string{"primary", "limit", "fallback"} {
		canvas.Rect(margin, y-8, 10, 10, "fill:"+tierColors[tier])
		canvas.Text(margin+16, y, tier, "font-family:monospace;font-size:12px")
		y += 16
	}
	canvas.End()
}
