package thumbnail

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgsvg"
)

// WritePlot writes the evaluation curve as an SVG line chart with a
// transparent background. Scores are in pawns from White's point of view,
// one per ply; the X axis is in full-move units. The Y axis spans
// [-scale, +scale] and values are clamped just inside it so a capped line
// stays visible.
func WritePlot(w io.Writer, scores []float64, scale float64) error {
	if len(scores) == 0 {
		return fmt.Errorf("no scores to plot")
	}
	if scale <= capMargin {
		return fmt.Errorf("scale %v too small", scale)
	}

	cap := scale - capMargin
	pts := make(plotter.XYs, len(scores))
	for i, s := range scores {
		if s > cap {
			s = cap
		} else if s < -cap {
			s = -cap
		}
		pts[i].X = float64(i+1) / 2
		pts[i].Y = s
	}

	p := plot.New()
	p.BackgroundColor = color.Transparent
	p.X.Tick.Label.Font.Size = vg.Points(8)
	p.Y.Tick.Label.Font.Size = vg.Points(8)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build line plot: %w", err)
	}
	line.LineStyle.Color = color.Black
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	// Fixed ranges, set after Add so the data does not widen them.
	p.X.Min = 0
	p.X.Max = pts[len(pts)-1].X
	p.Y.Min = -scale
	p.Y.Max = scale

	canvas := vgsvg.New(vg.Points(Size), vg.Points(Size))
	p.Draw(draw.New(canvas))

	if _, err := canvas.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot SVG: %w", err)
	}
	return nil
}
