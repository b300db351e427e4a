package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"chartanim/define"

	"github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"
)

// WritePNG 在服务端把一帧画成 PNG
func WritePNG(w io.Writer, f Frame, canvas Canvas) error {
	if len(f.Values) == 0 {
		return fmt.Errorf("frame %d has no values", f.Seq)
	}

	stroke := parseColor(f.Style.Stroke)
	fill := parseColor(f.Style.Fill)
	bg := parseColorOr(f.Style.Background, drawing.ColorWhite)
	background := chart.Style{FillColor: bg, StrokeColor: bg}
	axis := chart.Style{
		Show:        true,
		StrokeColor: parseColorOr(f.Style.Axis, drawing.ColorBlack),
		FontColor:   parseColorOr(f.Style.Axis, drawing.ColorBlack),
	}

	if f.Mode == define.ModeBar {
		bars := make([]chart.Value, len(f.Values))
		for i, v := range f.Values {
			bars[i] = chart.Value{
				Value: v,
				Label: labelAt(f, i),
				Style: chart.Style{
					Show:        true,
					FillColor:   fill,
					StrokeColor: stroke,
					StrokeWidth: float64(f.Style.BorderWidth),
				},
			}
		}

		// 每个柱子占一个槽位，柱宽取槽位的三分之二
		slot := canvas.Width / (len(bars) + 2)
		barWidth := max(slot*2/3, 2)
		bc := chart.BarChart{
			Title:      canvas.Title,
			TitleStyle: chart.StyleShow(),
			Width:      canvas.Width,
			Height:     canvas.Height,
			Background: background,
			Canvas:     background,
			BarWidth:   barWidth,
			BarSpacing: max(slot-barWidth, 1),
			XAxis:      axis,
			YAxis: chart.YAxis{
				Style: axis,
				Range: &chart.ContinuousRange{Min: 0, Max: 1},
			},
			Bars: bars,
		}
		return bc.Render(chart.PNG, w)
	}

	xs := make([]float64, len(f.Values))
	for i := range xs {
		xs[i] = float64(i + 1)
		if i < len(f.Labels) {
			xs[i] = float64(f.Labels[i])
		}
	}

	graph := chart.Chart{
		Title:      canvas.Title,
		TitleStyle: chart.StyleShow(),
		Width:      canvas.Width,
		Height:     canvas.Height,
		Background: background,
		Canvas:     background,
		XAxis: chart.XAxis{
			Style: axis,
		},
		YAxis: chart.YAxis{
			Style: axis,
			Range: &chart.ContinuousRange{Min: -1, Max: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: f.Label,
				Style: chart.Style{
					Show:        true,
					StrokeColor: stroke,
					StrokeWidth: float64(f.Style.BorderWidth),
				},
				XValues: xs,
				YValues: f.Values,
			},
		},
	}
	return graph.Render(chart.PNG, w)
}

func labelAt(f Frame, i int) string {
	if i < len(f.Labels) {
		return strconv.Itoa(f.Labels[i])
	}
	return strconv.Itoa(i + 1)
}

// parseColorOr 空字符串返回 fallback
func parseColorOr(s string, fallback drawing.Color) drawing.Color {
	if s == "" {
		return fallback
	}
	return parseColor(s)
}

// parseColor 解析 #RRGGBB 或 #RRGGBBAA
func parseColor(s string) drawing.Color {
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		return drawing.ColorFromHex(hex)
	case 8:
		alpha, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return drawing.ColorFromHex(hex[:6])
		}
		return drawing.ColorFromHex(hex[:6]).WithAlpha(uint8(alpha))
	}
	return drawing.ColorBlack
}
