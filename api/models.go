package api

import (
	"bytes"
	"encoding/json"
	"time"

	"chartanim/animator"
	"chartanim/define"
)

// ===== 通用响应模型 =====

// ApiResponse 统一 API 响应格式
type ApiResponse = define.ApiResponse

// ===== 动画控制相关模型 =====

// SpeedInput 速度输入，既接受 JSON 字符串也接受数字，保留原始文本交给 ParseSpeed
type SpeedInput string

func (s *SpeedInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SpeedInput(str)
		return nil
	}
	*s = SpeedInput(data)
	return nil
}

// AnimationStartRequest 动画启动请求
type AnimationStartRequest struct {
	Mode   string     `json:"mode" binding:"required"`
	Speed  SpeedInput `json:"speed"`
	Frames int        `json:"frames" binding:"min=0"`
}

// PaletteRequest 配色设置请求
type PaletteRequest struct {
	Line       string `json:"line" binding:"omitempty,hexcolor"`
	Bar        string `json:"bar" binding:"omitempty,hexcolor"`
	Background string `json:"background" binding:"omitempty,hexcolor"`
	Axis       string `json:"axis" binding:"omitempty,hexcolor"`
}

// AnimationStatusResponse 动画状态响应
type AnimationStatusResponse struct {
	animator.Status
	Palette        define.Palette `json:"palette"`
	DefaultSpeedMs int            `json:"defaultSpeedMs"`
}

// ===== 系统管理相关模型 =====

// SystemStatusResponse 系统状态响应
type SystemStatusResponse struct {
	Version     string                  `json:"version"`
	Uptime      time.Duration           `json:"uptime"`
	Subscribers int                     `json:"subscribers"`
	FrameSeq    uint64                  `json:"frameSeq"`
	Animation   AnimationStatusResponse `json:"animation"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}
