package server

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// shortID keeps session ids readable on a chart axis
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// renderSessionChart draws message, solution and opponent counts per session
func renderSessionChart(sessions []SessionStats) (*bytes.Buffer, error) {
	x := make([]string, 0, len(sessions))
	messages := make([]opts.BarData, 0, len(sessions))
	solutions := make([]opts.BarData, 0, len(sessions))
	opponents := make([]opts.BarData, 0, len(sessions))
	for _, s := range sessions {
		x = append(x, shortID(s.ID))
		messages = append(messages, opts.BarData{Value: s.Messages})
		solutions = append(solutions, opts.BarData{Value: s.Solutions})
		opponents = append(opponents, opts.BarData{Value: s.Opponents})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Marksman Sessions", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Sessions", Subtitle: time.Now().Format(time.RFC3339)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("messages", messages).
		AddSeries("solutions", solutions).
		AddSeries("opponents", opponents)

	page := components.NewPage()
	page.PageTitle = "Marksman Sessions"
	page.AddCharts(bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// HandleSessionChart renders the connected sessions as an HTML bar chart
func (s *Server) HandleSessionChart(w http.ResponseWriter, r *http.Request) {
	buf, err := renderSessionChart(s.Sessions())
	if err != nil {
		log.Printf("Error rendering session chart: %v", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
