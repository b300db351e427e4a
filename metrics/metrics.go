package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesTotal 已发布的帧数
	FramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chartanim_frames_total",
		Help: "Number of frames published by the chart hub.",
	})

	// AnimationStarts 按模式统计的动画启动次数
	AnimationStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chartanim_animation_starts_total",
		Help: "Number of animation starts by display mode.",
	}, []string{"mode"})

	// StreamSubscribers 当前 SSE 订阅者数量
	StreamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chartanim_stream_subscribers",
		Help: "Number of connected frame stream subscribers.",
	})

	// TickInterval 当前动画的 tick 间隔
	TickInterval = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chartanim_tick_interval_ms",
		Help: "Tick interval of the running animation in milliseconds, 0 when stopped.",
	})
)
