package animator

import "chartanim/define"

// Style 数据集的绘制样式
type Style struct {
	Stroke      string `json:"stroke"`
	Fill        string `json:"fill"`
	BorderWidth int    `json:"borderWidth"`
	Filled      bool   `json:"filled"`
	Background  string `json:"background"`
	Axis        string `json:"axis"`
}

// defaultBorderWidth 数据集线宽
const defaultBorderWidth = 2

// Renderer 外部图表组件的能力：接收新的数据集和样式，并触发重绘
type Renderer interface {
	// SetStyle 切换图表类型和配色
	SetStyle(mode define.DisplayMode, style Style)
	// SetData 替换数据集的全部取值
	SetData(values []float64)
	// Update 按当前样式和数据重绘
	Update() error
}
