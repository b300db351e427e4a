package api

import (
	"time"

	"chartanim/animator"
	"chartanim/define"
	"chartanim/render"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APIPrefix API 路由前缀
const APIPrefix = "/api/v1"

// Server API 服务器结构体
type Server struct {
	animator  *animator.Animator
	hub       *render.Hub
	config    *define.Config
	startTime time.Time
	version   string
}

// NewServer 创建新的 API 服务器实例
func NewServer(anim *animator.Animator, hub *render.Hub, cfg *define.Config, version string) *Server {
	return &Server{
		animator:  anim,
		hub:       hub,
		config:    cfg,
		startTime: time.Now(),
		version:   version,
	}
}

// SetupRoutes 设置路由
func (s *Server) SetupRoutes(r *gin.Engine) {
	r.GET("/", s.handleIndex)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group(APIPrefix)
	{
		// 动画控制路由
		animations := v1.Group("/animation")
		{
			animations.GET("/status", s.handleAnimationStatus) // 获取动画状态
			animations.POST("/start", s.handleStartAnimation)  // 启动动画
			animations.POST("/stop", s.handleStopAnimation)    // 停止动画
			animations.PUT("/palette", s.handleSetPalette)     // 设置配色
		}

		// 图表数据路由
		chart := v1.Group("/chart")
		{
			chart.GET("", s.handleGetFrame)                 // 当前帧
			chart.GET("/option", s.handleGetOption)         // 图表组件配置
			chart.GET("/snapshot.png", s.handleGetSnapshot) // PNG 快照
			chart.GET("/stream", s.handleChartStream)       // SSE 帧流
		}

		// 系统管理路由
		system := v1.Group("/system")
		{
			system.GET("/status", s.handleGetSystemStatus) // 获取系统状态
			system.GET("/health", s.handleHealthCheck)     // 健康检查
		}
	}
}

func (s *Server) canvas() render.Canvas {
	return render.Canvas{
		Title:  s.config.Title,
		Width:  s.config.Width,
		Height: s.config.Height,
	}
}
