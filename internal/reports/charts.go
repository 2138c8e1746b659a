package reports

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

// ExpenseChartPNG renders the expense-by-category buckets as a PNG bar
// chart. Returns (nil, nil) when there is nothing to draw.
func ExpenseChartPNG(s Summary) ([]byte, error) {
	if len(s.ExpenseByCategory) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(s.ExpenseByCategory))
	for _, ct := range s.ExpenseByCategory {
		bars = append(bars, chart.Value{
			Value: ct.Total,
			Label: ct.Name,
		})
	}

	graph := chart.BarChart{
		Title:    "Expenses by category",
		Width:    900,
		Height:   500,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    48,
				Left:   24,
				Right:  24,
				Bottom: 24,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.Style{
			FontSize:  11,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
			Style: chart.Style{
				FontSize:  11,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render expense chart: %w", err)
	}
	return buf.Bytes(), nil
}
