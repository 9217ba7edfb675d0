package coupling

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/teratoma-labs/polyglotscan/internal/plotpage"
)

const (
	labelFontSize    = 10
	innerLabelSize   = 9
	barChartHeight   = "500px"
	maxPlottedPairs  = 20
	maxPathLabelLen  = 48
	truncationMarker = "..."
)

// pair is one (source, coupled) edge with its strongest bucket count, used
// to rank edges for the plot regardless of which bucket they came from.
type pair struct {
	source, coupled string
	count           int
}

// RenderPlot writes an HTML page summarizing the strongest coupling edges
// found across every file and bucket in result.
func RenderPlot(result map[string]Data, meta *RootMetadata, w io.Writer) error {
	page := plotpage.NewPage(
		"Coupling Analysis",
		"Temporal co-change relationships discovered across the commit history",
	)

	chart := buildTopPairsBarChart(result)
	if chart != nil {
		page.Add(plotpage.Section{
			Title:    "Top Coupled File Pairs",
			Subtitle: bucketSubtitle(meta),
			Chart:    plotpage.WrapChart(chart),
			Hint: plotpage.Hint{
				Title: "How to interpret:",
				Items: []string{
					"Tall bars = file pairs that change together often within a bucket",
					"Coupling is directional: A↔B here reflects A's perspective",
					"Cross-package coupling may indicate a missing abstraction",
					"Action: consider extracting shared logic or co-locating tightly coupled files",
				},
			},
		})
	}

	return page.Render(w)
}

func bucketSubtitle(meta *RootMetadata) string {
	if meta == nil {
		return "No coupling data collected."
	}

	return fmt.Sprintf("%d buckets of %d days each", meta.BucketCount, meta.Config.BucketDays)
}

func buildTopPairsBarChart(result map[string]Data) *charts.Bar {
	pairs := topPairs(result)
	if len(pairs) == 0 {
		return nil
	}

	shown := min(len(pairs), maxPlottedPairs)
	labels := make([]string, shown)
	values := make([]opts.BarData, shown)

	for i, p := range pairs[:shown] {
		labels[shown-1-i] = truncatePath(p.source) + " ↔ " + truncatePath(p.coupled)
		values[shown-1-i] = opts.BarData{Value: p.count}
	}

	co := plotpage.DefaultChartOpts()
	palette := plotpage.GetChartPalette(plotpage.ThemeDark)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTooltipOpts(co.Tooltip("axis")),
		charts.WithInitializationOpts(co.Init("100%", barChartHeight)),
		charts.WithGridOpts(opts.Grid{
			Left: "35%", Right: "5%", Top: "40", Bottom: "10%",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "value",
			AxisLabel: &opts.AxisLabel{FontSize: labelFontSize, Color: co.TextMutedColor()},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category", Data: labels,
			AxisLabel: &opts.AxisLabel{FontSize: labelFontSize, Color: co.TextMutedColor()},
		}),
	)

	bar.AddSeries("Co-occurrences", values,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: palette.Primary[0]}),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "right",
			Color:    co.TextMutedColor(),
			FontSize: innerLabelSize,
		}),
	)

	return bar
}

// topPairs flattens every (source, bucket, coupled) edge to its strongest
// observed count per (source, coupled) pair, sorted descending by count.
func topPairs(result map[string]Data) []pair {
	best := make(map[[2]string]int)

	for source, buckets := range result {
		for _, rec := range buckets {
			for _, cf := range rec.CoupledFiles {
				key := [2]string{source, cf.Path}
				if cf.Count > best[key] {
					best[key] = cf.Count
				}
			}
		}
	}

	pairs := make([]pair, 0, len(best))
	for k, count := range best {
		pairs = append(pairs, pair{source: k[0], coupled: k[1], count: count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}

		if pairs[i].source != pairs[j].source {
			return pairs[i].source < pairs[j].source
		}

		return pairs[i].coupled < pairs[j].coupled
	})

	return pairs
}

func truncatePath(p string) string {
	if len(p) <= maxPathLabelLen {
		return p
	}

	keep := maxPathLabelLen - len(truncationMarker)

	return truncationMarker + p[len(p)-keep:]
}
