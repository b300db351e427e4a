package sample

import (
	"math"

	"chartanim/define"
)

// 采样序列参数
const (
	Count     = 30   // 采样点数量，x 取值 1..Count
	Divisor   = 4.0  // sin(x/Divisor + phase)
	PhaseStep = 0.08 // 每个 tick 的相位增量
)

// Point 一个采样点
type Point struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

// Sequence 一次完整的采样结果
type Sequence []Point

// Labels 横轴标签 1..Count
func Labels() []int {
	labels := make([]int, Count)
	for i := range labels {
		labels[i] = i + 1
	}
	return labels
}

// Value 计算单个采样值，柱状模式取绝对值
func Value(mode define.DisplayMode, x int, phase int) float64 {
	y := math.Sin(float64(x)/Divisor + float64(phase)*PhaseStep)
	if mode == define.ModeBar {
		return math.Abs(y)
	}
	return y
}

// Generate 按模式和相位重新生成整个序列
func Generate(mode define.DisplayMode, phase int) Sequence {
	seq := make(Sequence, Count)
	for i := range seq {
		x := i + 1
		seq[i] = Point{X: x, Y: Value(mode, x, phase)}
	}
	return seq
}

// Values 只取 y 值
func (s Sequence) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Y
	}
	return values
}
