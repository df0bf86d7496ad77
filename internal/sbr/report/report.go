// Package report renders standalone HTML reports for annotated ray
// bundles using go-echarts: a leaf-depth histogram plus per-track draw
// outcomes. Reports are plain files so they can be shared without a
// running server.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/raytrack.report/internal/sbr"
)

// WriteBundleReport renders the report for an annotated bundle to w.
// The bundle must have been through sbr.ApplyFilter.
func WriteBundleReport(w io.Writer, b *sbr.RayBundle) error {
	stats, err := sbr.ComputeStats(b)
	if err != nil {
		return err
	}
	summaries, err := sbr.Summarize(b)
	if err != nil {
		return err
	}

	page := components.NewPage()
	page.AddCharts(depthHistogram(b, stats), trackOutcomes(summaries))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render bundle report: %w", err)
	}
	return nil
}

// WriteBundleReportFile writes the report to an HTML file.
func WriteBundleReportFile(path string, b *sbr.RayBundle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteBundleReport(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func depthHistogram(b *sbr.RayBundle, stats *sbr.BundleStats) components.Charter {
	depths := make([]int, 0, len(stats.DepthHistogram))
	for d := range stats.DepthHistogram {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	xs := make([]string, 0, len(depths))
	ys := make([]opts.BarData, 0, len(depths))
	for _, d := range depths {
		xs = append(xs, fmt.Sprintf("%d", d))
		ys = append(ys, opts.BarData{Value: stats.DepthHistogram[d]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "SBR Ray Tracks", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Leaf depth distribution",
			Subtitle: fmt.Sprintf("bundle=%s leaves=%d mean=%.2f median=%.1f", b.Name, stats.LeafCount, stats.MeanLeafDepth, stats.MedianLeafDepth),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "max depth"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "leaves"}),
	)
	bar.SetXAxis(xs).AddSeries("leaves", ys,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}

func trackOutcomes(summaries []sbr.TrackSummary) components.Charter {
	drawnByType := map[sbr.TrackType]int{}
	filteredByType := map[sbr.TrackType]int{}
	for _, s := range summaries {
		if s.Drawn {
			drawnByType[s.TrackType]++
		} else {
			filteredByType[s.TrackType]++
		}
	}

	types := []sbr.TrackType{sbr.TrackTypeSBR, sbr.TrackTypeUTD}
	xs := make([]string, 0, len(types))
	drawn := make([]opts.BarData, 0, len(types))
	filtered := make([]opts.BarData, 0, len(types))
	for _, tt := range types {
		xs = append(xs, string(tt))
		drawn = append(drawn, opts.BarData{Value: drawnByType[tt]})
		filtered = append(filtered, opts.BarData{Value: filteredByType[tt]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Track outcomes by type"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(xs).
		AddSeries("drawn", drawn).
		AddSeries("filtered out", filtered)
	return bar
}
