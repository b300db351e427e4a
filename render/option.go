package render

import (
	"strconv"

	"chartanim/define"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartID 页面中图表容器的 id
const ChartID = "chartanim"

// Canvas 图表的固定尺寸和标题
type Canvas struct {
	Title  string
	Width  int
	Height int
}

type echartsConfig interface {
	Validate()
	JSON() map[string]interface{}
}

// Option 用 go-echarts 构造图表组件的配置：
// 图表类型、标签、单个数据集 (取值、描边色、填充色、线宽、不填充)，
// 背景色和坐标轴颜色、固定尺寸、关闭组件自身的动画。
func Option(f Frame, canvas Canvas) map[string]interface{} {
	var chart echartsConfig

	globals := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       canvas.Title,
			Width:           strconv.Itoa(canvas.Width) + "px",
			Height:          strconv.Itoa(canvas.Height) + "px",
			ChartID:         ChartID,
			BackgroundColor: f.Style.Background,
		}),
		charts.WithTitleOpts(opts.Title{Title: canvas.Title}),
	}
	if axis := f.Style.Axis; axis != "" {
		globals = append(globals,
			charts.WithXAxisOpts(opts.XAxis{
				AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: axis}},
				AxisLabel: &opts.AxisLabel{Color: axis},
			}),
			charts.WithYAxisOpts(opts.YAxis{
				AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: axis}},
				AxisLabel: &opts.AxisLabel{Color: axis},
			}),
		)
	}

	labels := f.Labels
	if len(labels) == 0 {
		labels = make([]int, len(f.Values))
		for i := range labels {
			labels[i] = i + 1
		}
	}

	switch f.Mode {
	case define.ModeBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(globals...)
		items := make([]opts.BarData, len(f.Values))
		for i, v := range f.Values {
			items[i] = opts.BarData{Value: v}
		}
		bar.SetXAxis(labels).AddSeries(f.Label, items,
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:       f.Style.Fill,
				BorderColor: f.Style.Stroke,
			}),
		)
		chart = bar
	default:
		line := charts.NewLine()
		line.SetGlobalOptions(globals...)
		items := make([]opts.LineData, len(f.Values))
		for i, v := range f.Values {
			items[i] = opts.LineData{Value: v}
		}
		line.SetXAxis(labels).AddSeries(f.Label, items,
			charts.WithLineStyleOpts(opts.LineStyle{
				Color: f.Style.Stroke,
				Width: float32(f.Style.BorderWidth),
			}),
			charts.WithItemStyleOpts(opts.ItemStyle{
				Color:       f.Style.Fill,
				BorderColor: f.Style.Stroke,
			}),
		)
		chart = line
	}

	chart.Validate()
	option := chart.JSON()
	option["animation"] = false
	return option
}
