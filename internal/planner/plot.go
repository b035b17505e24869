package planner

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoPlotFile is returned by SavePlot when no output file is given.
var ErrNoPlotFile = errors.New("planner: plot file name is empty")

var (
	nodeColor     = color.RGBA{B: 255, A: 255}
	edgeColor     = color.RGBA{R: 160, G: 160, B: 200, A: 255}
	pathColor     = color.RGBA{R: 255, G: 140, A: 255}
	startColor    = color.RGBA{G: 160, A: 255}
	goalColor     = color.RGBA{R: 220, A: 255}
	obstacleColor = color.RGBA{A: 255}
)

// PlotOptions controls what NewPlot draws.
type PlotOptions struct {
	// Title is the plot heading. Empty uses "RRT".
	Title string

	// Edges draws the parent link of every node.
	Edges bool

	// Path highlights the branch ending at the last node.
	Path bool
}

func toXYs(pts []r2.Vec) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

func scatter(pts []r2.Vec, c color.Color, radius vg.Length, shape draw.GlyphDrawer) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(toXYs(pts))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Shape = shape
	return s, nil
}

// NewPlot renders the tree: nodes in blue, the start in green, the goal in red
// and obstacles in black, on axes fixed to the sampling square.
func NewPlot(t *RRT, opts PlotOptions) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = opts.Title
	if p.Title.Text == "" {
		p.Title.Text = "RRT"
	}
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.X.Min, p.X.Max = 0, t.mapSize
	p.Y.Min, p.Y.Max = 0, t.mapSize

	if opts.Edges {
		for i := 1; i < len(t.nodes); i++ {
			l, err := plotter.NewLine(toXYs([]r2.Vec{t.nodes[t.parents[i]], t.nodes[i]}))
			if err != nil {
				return nil, err
			}
			l.Color = edgeColor
			l.Width = vg.Points(0.5)
			p.Add(l)
		}
	}

	nodes, err := scatter(t.nodes, nodeColor, vg.Points(1.5), draw.CircleGlyph{})
	if err != nil {
		return nil, err
	}
	p.Add(nodes)
	p.Legend.Add("Nodes", nodes)

	if opts.Path {
		l, err := plotter.NewLine(toXYs(t.Path()))
		if err != nil {
			return nil, err
		}
		l.Color = pathColor
		l.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add("Path", l)
	}

	if len(t.obstacles) > 0 {
		obs, err := scatter(t.obstacles, obstacleColor, vg.Points(4), draw.BoxGlyph{})
		if err != nil {
			return nil, err
		}
		p.Add(obs)
		p.Legend.Add("Obstacles", obs)
	}

	start, err := scatter([]r2.Vec{t.start}, startColor, vg.Points(4), draw.CircleGlyph{})
	if err != nil {
		return nil, err
	}
	p.Add(start)
	p.Legend.Add("Start", start)

	goal, err := scatter([]r2.Vec{t.goal}, goalColor, vg.Points(4), draw.CircleGlyph{})
	if err != nil {
		return nil, err
	}
	p.Add(goal)
	p.Legend.Add("Goal", goal)

	p.Legend.Top = true
	p.Legend.Left = true
	return p, nil
}

// SavePlot renders t with NewPlot and writes it to file. The image format
// follows the file extension (png, svg, pdf, ...). Missing parent
// directories are created.
func SavePlot(t *RRT, file string, opts PlotOptions) error {
	if file == "" {
		return ErrNoPlotFile
	}
	p, err := NewPlot(t, opts)
	if err != nil {
		return fmt.Errorf("failed to build plot: %w", err)
	}
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", file, err)
	}
	Logf("planner: wrote plot %s", file)
	return nil
}
