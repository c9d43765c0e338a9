package renderer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/azaurus1/vanetsim/internal/roadnet"
	"github.com/azaurus1/vanetsim/internal/sim"
	"github.com/gopxl/pixel/v2"
	"github.com/gopxl/pixel/v2/backends/opengl"
	"github.com/gopxl/pixel/v2/ext/imdraw"
	"github.com/gopxl/pixel/v2/ext/text"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	windowWidth  = 1024
	windowHeight = 768
	padding      = 24
	vehicleSize  = 4
)

var (
	roadColor     = color.RGBA{R: 200, G: 60, B: 60, A: 255}
	linkColor     = color.RGBA{R: 60, G: 120, B: 220, A: 140}
	idleColor     = color.RGBA{R: 255, G: 215, B: 0, A: 230}
	receivedColor = colornames.Orange
	alertColor    = colornames.Red
)

// Run opens a window and draws the latest snapshot every frame until the
// window is closed. Space toggles the clock, 1-4 select a speed multiplier.
// It must run on the main thread via opengl.Run.
func Run(s *sim.Simulation, clock *sim.Clock, log *logrus.Entry) {
	log = log.WithField("component", "renderer")

	cfg := opengl.WindowConfig{
		Title:  "VANET Simulation",
		Bounds: pixel.R(0, 0, windowWidth, windowHeight),
		VSync:  true,
	}
	win, err := opengl.NewWindow(cfg)
	if err != nil {
		log.WithError(err).Error("could not open window")
		return
	}
	defer win.Destroy()

	g := s.Graph()
	proj := newProjection(g.Bound(), win.Bounds().W(), win.Bounds().H())
	roads := drawRoads(g, proj)
	atlas := text.NewAtlas(basicfont.Face7x13, text.ASCII)
	multipliers := s.Config().SpeedMultipliers
	keys := []pixel.Button{pixel.Key1, pixel.Key2, pixel.Key3, pixel.Key4}

	for !win.Closed() {
		if win.JustPressed(pixel.KeySpace) {
			clock.Toggle()
		}
		for i, key := range keys {
			if i < len(multipliers) && win.JustPressed(key) {
				if err := clock.SetMultiplier(multipliers[i]); err != nil {
					log.WithError(err).Warn("multiplier rejected")
				}
			}
		}

		snap := s.Snapshot()
		win.Clear(colornames.Whitesmoke)

		drawDensity(snap, proj).Draw(win)
		roads.Draw(win)
		drawLinks(snap, proj).Draw(win)
		drawVehicles(snap, proj).Draw(win)

		hud := text.New(pixel.V(10, win.Bounds().H()-20), atlas)
		hud.Color = colornames.Black
		state := "paused"
		if clock.Running() {
			state = "running"
		}
		fmt.Fprintf(hud, "%s  x%.1f  vehicles: %d  links: %d\n", state, clock.Multiplier(), len(snap.Vehicles), len(snap.Links))
		fmt.Fprintf(hud, "relays: %d  duplicates: %d", snap.Stats.Relays, snap.Stats.Duplicates)
		hud.Draw(win, pixel.IM)

		win.Update()
	}
}

func drawRoads(g *roadnet.Graph, proj projection) *imdraw.IMDraw {
	imd := imdraw.New(nil)
	imd.Color = roadColor
	for i, e := range g.Edges() {
		if !g.ValidEdge(i) {
			continue
		}
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		imd.Push(proj.vec(from.Point), proj.vec(to.Point))
		imd.Line(1.5)
	}
	return imd
}

func drawDensity(snap sim.Snapshot, proj projection) *imdraw.IMDraw {
	imd := imdraw.New(nil)

	peak := 0
	for _, c := range snap.Density {
		peak = max(peak, c.Count)
	}
	if peak == 0 {
		return imd
	}

	size := snap.DensityCellDegrees
	for _, c := range snap.Density {
		alpha := 0.15 + 0.45*float64(c.Count)/float64(peak)
		imd.Color = pixel.RGB(1, 0.3, 0).Mul(pixel.Alpha(alpha))
		imd.Push(
			proj.vec(orb.Point{c.MinLon, c.MinLat}),
			proj.vec(orb.Point{c.MinLon + size, c.MinLat + size}),
		)
		imd.Rectangle(0)
	}
	return imd
}

func drawLinks(snap sim.Snapshot, proj projection) *imdraw.IMDraw {
	imd := imdraw.New(nil)
	imd.Color = linkColor

	byID := make(map[int]sim.VehicleView, len(snap.Vehicles))
	for _, v := range snap.Vehicles {
		byID[v.ID] = v
	}
	for _, l := range snap.Links {
		a, okA := byID[l.A]
		b, okB := byID[l.B]
		if !okA || !okB {
			continue
		}
		imd.Push(proj.vec(orb.Point{a.Lon, a.Lat}), proj.vec(orb.Point{b.Lon, b.Lat}))
		imd.Line(1)
	}
	return imd
}

func drawVehicles(snap sim.Snapshot, proj projection) *imdraw.IMDraw {
	imd := imdraw.New(nil)
	for _, v := range snap.Vehicles {
		switch {
		case v.ActiveAlert:
			imd.Color = alertColor
		case v.ReceivedAlert:
			imd.Color = receivedColor
		default:
			imd.Color = idleColor
		}
		imd.Push(proj.vec(orb.Point{v.Lon, v.Lat}))
		imd.Circle(vehicleSize, 0)
	}
	return imd
}

// projection maps lon/lat onto window pixels with an equirectangular
// projection scaled to fit the network's bounds.
type projection struct {
	min      orb.Point
	lonScale float64
	scale    float64
}

func newProjection(b orb.Bound, w, h float64) projection {
	midLat := (b.Min.Lat() + b.Max.Lat()) / 2
	lonScale := math.Cos(midLat * math.Pi / 180)

	spanX := (b.Max.Lon() - b.Min.Lon()) * lonScale
	spanY := b.Max.Lat() - b.Min.Lat()

	scale := 1.0
	if spanX > 0 || spanY > 0 {
		scale = math.Min((w-2*padding)/math.Max(spanX, 1e-9), (h-2*padding)/math.Max(spanY, 1e-9))
	}

	return projection{min: b.Min, lonScale: lonScale, scale: scale}
}

func (p projection) vec(pt orb.Point) pixel.Vec {
	return pixel.V(
		padding+(pt.Lon()-p.min.Lon())*p.lonScale*p.scale,
		padding+(pt.Lat()-p.min.Lat())*p.scale,
	)
}
