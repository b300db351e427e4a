package render

import (
	"time"

	"chartanim/animator"
	"chartanim/define"

	"github.com/goccy/go-json"
)

// Frame 一次重绘时发布给图表组件的完整数据
type Frame struct {
	Seq    uint64             `json:"seq"`
	Mode   define.DisplayMode `json:"mode"`
	Label  string             `json:"label"`
	Labels []int              `json:"labels"`
	Values []float64          `json:"values"`
	Style  animator.Style     `json:"style"`
	Time   time.Time          `json:"time"`
}

// Encode 序列化为 JSON
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame 从 JSON 解析帧
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}

func (f Frame) clone() Frame {
	f.Labels = append([]int(nil), f.Labels...)
	f.Values = append([]float64(nil), f.Values...)
	return f
}
