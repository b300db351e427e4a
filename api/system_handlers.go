package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleGetSystemStatus 获取系统状态
func (s *Server) handleGetSystemStatus(c *gin.Context) {
	response := SystemStatusResponse{
		Version:     s.version,
		Uptime:      time.Since(s.startTime),
		Subscribers: s.hub.Subscribers(),
		FrameSeq:    s.hub.Snapshot().Seq,
		Animation:   s.animationStatus(),
	}

	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data:   response,
	})
}

// handleHealthCheck 健康检查
func (s *Server) handleHealthCheck(c *gin.Context) {
	status := "healthy"

	// 还没有渲染过任何一帧说明初始化没有完成
	if s.animator == nil || s.hub == nil || s.hub.Snapshot().Seq == 0 {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   s.version,
	}

	if status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, ApiResponse{
			Status: "error",
			Error:  "图表尚未完成初始化",
			Data:   response,
		})
		return
	}

	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data:   response,
	})
}
