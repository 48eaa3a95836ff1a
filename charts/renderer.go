package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bixi-eda/models"
	"bixi-eda/utils"
)

const dateFormat = "2006-01-02"

// Renderer draws chart models to PNG files under its output directory.
type Renderer struct {
	outDir string
	width  vg.Length
	height vg.Length
	logger *utils.Logger
	pool   *utils.WorkerPool
}

// NewRenderer creates a Renderer writing to outDir with a figure size given
// in inches. Charts are rendered by up to workers goroutines.
func NewRenderer(outDir string, widthIn, heightIn float64, workers int, logger *utils.Logger) *Renderer {
	return &Renderer{
		outDir: outDir,
		width:  vg.Length(widthIn) * vg.Inch,
		height: vg.Length(heightIn) * vg.Inch,
		logger: logger,
		pool:   utils.NewWorkerPool(workers),
	}
}

// RenderAll renders every chart of the report. The returned paths follow
// catalog order; the first error encountered is returned after all jobs finish.
func (r *Renderer) RenderAll(report *models.InsightReport) ([]string, error) {
	charts := report.Charts()
	paths := make([]string, len(charts))

	var (
		mu       sync.Mutex
		firstErr error
	)
	for i, c := range charts {
		i, c := i, c
		r.pool.Submit(func() {
			path, err := r.Render(c)
			if err != nil {
				r.logger.Error("[charts] %s: %v", c.ChartName(), err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			paths[i] = path
		})
	}
	r.pool.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	r.logger.Info("[charts] Rendered %d charts to %s", len(paths), r.outDir)
	return paths, nil
}

// Render draws one chart and returns the written file path.
func (r *Renderer) Render(c models.Chart) (string, error) {
	p := plot.New()
	p.Title.Text = c.ChartTitle()

	var err error
	switch chart := c.(type) {
	case *models.BarChart:
		err = drawBars(p, chart)
	case *models.Histogram:
		err = drawHistogram(p, chart)
	case *models.LineChart:
		err = drawLines(p, chart)
	default:
		err = fmt.Errorf("unsupported chart type %T", c)
	}
	if err != nil {
		return "", fmt.Errorf("charts: %s: %w", c.ChartName(), err)
	}

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return "", fmt.Errorf("charts: create output dir: %w", err)
	}
	path := filepath.Join(r.outDir, c.ChartName()+".png")
	if err := p.Save(r.width, r.height, path); err != nil {
		return "", fmt.Errorf("charts: save %q: %w", path, err)
	}
	r.logger.Debug("[charts] Wrote %s", path)
	return path, nil
}

func drawBars(p *plot.Plot, c *models.BarChart) error {
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	if len(c.Values) == 0 {
		return nil
	}

	bars, err := plotter.NewBarChart(plotter.Values(c.Values), vg.Points(18))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	bars.Horizontal = c.Horizontal
	p.Add(bars)

	if c.Horizontal {
		p.NominalY(c.Labels...)
	} else {
		p.NominalX(c.Labels...)
	}
	return nil
}

func drawHistogram(p *plot.Plot, c *models.Histogram) error {
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	for i, layer := range c.Layers {
		if len(layer.Bins) == 0 {
			continue
		}
		h := &plotter.Histogram{
			Bins:      make([]plotter.HistogramBin, len(layer.Bins)),
			Width:     layer.Bins[0].Max - layer.Bins[0].Min,
			FillColor: translucent(plotutil.Color(i)),
			LineStyle: plotter.DefaultLineStyle,
		}
		for j, b := range layer.Bins {
			h.Bins[j] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: b.Count}
		}
		p.Add(h)
		if len(c.Layers) > 1 {
			p.Legend.Add(layer.Label, h)
		}
	}

	if len(c.Density) > 0 {
		line, err := plotter.NewLine(toXYs(c.Density))
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(len(c.Layers))
		line.Width = vg.Points(1.5)
		p.Add(line)
	}
	return nil
}

func drawLines(p *plot.Plot, c *models.LineChart) error {
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	if c.TimeAxis {
		p.X.Tick.Marker = plot.TimeTicks{Format: dateFormat}
	}

	drawn := 0
	for i, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(toXYs(s.Points))
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		if len(c.Series) > 1 {
			p.Legend.Add(s.Label, line, points)
		}
		drawn++
	}

	if drawn > 0 && len(c.XLabels) > 0 {
		p.NominalX(c.XLabels...)
	}
	return nil
}

func toXYs(points []models.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}
	return xys
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 128}
}
