// Package report renders simulation trajectories for humans: PNG line
// plots on disk and quick asciigraph charts for the terminal. It only
// reads the samples it is handed.
package report

import (
	"bufio"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/cruisesim/internal/cruise"
)

var (
	speedColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	refColor   = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	ctrlColor  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	gradeColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// WritePlots writes velocity.png (speed with reference overlay),
// control.png and grade.png into dir.
func WritePlots(dir string, samples []cruise.Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("report: no samples to plot")
	}

	times := make([]float64, len(samples))
	speeds := make([]float64, len(samples))
	refs := make([]float64, len(samples))
	controls := make([]float64, len(samples))
	grades := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		speeds[i] = s.Speed
		refs[i] = s.Ref
		controls[i] = s.Control
		grades[i] = s.Grade
	}

	p := newPlot("Velocity response", "time t [s]", "velocity v [m/s]")
	if err := addLine(p, times, speeds, speedColor, "v"); err != nil {
		return err
	}
	if err := addLine(p, times, refs, refColor, "vref"); err != nil {
		return err
	}
	p.Legend.Top = false
	if err := savePNG(p, filepath.Join(dir, "velocity.png")); err != nil {
		return err
	}

	p = newPlot("Control input", "time t [s]", "control u")
	if err := addLine(p, times, controls, ctrlColor, ""); err != nil {
		return err
	}
	if err := savePNG(p, filepath.Join(dir, "control.png")); err != nil {
		return err
	}

	p = newPlot("Road grade", "time t [s]", "grade [rad]")
	if err := addLine(p, times, grades, gradeColor, ""); err != nil {
		return err
	}
	return savePNG(p, filepath.Join(dir, "grade.png"))
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, xs, ys []float64, c color.Color, label string) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("report: series length mismatch")
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	p.Add(line)
	if label != "" {
		p.Legend.Add(label, line)
	}
	return nil
}

func savePNG(p *plot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	c := vgimg.NewWith(
		vgimg.UseWH(8*vg.Inch, 5*vg.Inch),
		vgimg.UseDPI(150),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("report: cannot write png: %w", err)
	}
	return nil
}
