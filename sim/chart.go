package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// hitRateSeries returns the cumulative hit rate after each graded shot,
// keyed by opponent name and then by engine (false) or naive (true) shots.
// Ungraded shots are skipped.
func hitRateSeries(shots []ShotResult) map[string]map[bool]plotter.XYs {
	series := make(map[string]map[bool]plotter.XYs)
	type tally struct{ shots, hits int }
	counts := make(map[string]map[bool]*tally)

	for _, s := range shots {
		if s.Outcome == ShotUngraded {
			continue
		}
		if series[s.Name] == nil {
			series[s.Name] = make(map[bool]plotter.XYs)
			counts[s.Name] = map[bool]*tally{false: {}, true: {}}
		}
		c := counts[s.Name][s.Baseline]
		c.shots++
		if s.Outcome == ShotHit {
			c.hits++
		}
		series[s.Name][s.Baseline] = append(series[s.Name][s.Baseline], plotter.XY{
			X: float64(s.Tick),
			Y: float64(c.hits) / float64(c.shots),
		})
	}
	return series
}

// SaveHitRateChart plots the cumulative hit rate of every opponent over the
// replay. Naive shots are drawn dashed in the opponent's color. The image
// format follows the file extension.
func SaveHitRateChart(shots []ShotResult, path string) error {
	if len(shots) == 0 {
		return fmt.Errorf("hit rate chart: no shots to plot")
	}

	p := plot.New()
	p.Title.Text = "Cumulative hit rate"
	p.X.Label.Text = "Tick"
	p.Y.Label.Text = "Hit rate"
	p.Y.Min = 0
	p.Y.Max = 1

	series := hitRateSeries(shots)
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		for _, baseline := range []bool{false, true} {
			pts := series[name][baseline]
			if len(pts) == 0 {
				continue
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("hit rate chart %s: %w", name, err)
			}
			line.Width = vg.Points(1)
			line.Color = plotutil.Color(i)
			label := name
			if baseline {
				line.Dashes = plotutil.Dashes(1)
				label += " (naive)"
			}
			p.Add(line)
			p.Legend.Add(label, line)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("hit rate chart: %w", err)
	}
	return nil
}
