package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"chartanim/render"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// handleIndex 图表页面
func (s *Server) handleIndex(c *gin.Context) {
	status := s.animator.Status()
	speedMs := status.IntervalMs
	if speedMs <= 0 {
		speedMs = s.animator.DefaultSpeed()
	}

	var buf bytes.Buffer
	err := render.WritePage(&buf, render.PageParams{
		Canvas:    s.canvas(),
		Frame:     s.hub.Snapshot(),
		Mode:      status.Mode,
		SpeedMs:   speedMs,
		APIPrefix: APIPrefix,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ApiResponse{
			Status: "error",
			Error:  fmt.Sprintf("渲染页面失败：%v", err),
		})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// handleGetFrame 获取当前帧
func (s *Server) handleGetFrame(c *gin.Context) {
	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data:   s.hub.Snapshot(),
	})
}

// handleGetOption 获取图表组件配置
func (s *Server) handleGetOption(c *gin.Context) {
	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data:   render.Option(s.hub.Snapshot(), s.canvas()),
	})
}

// handleGetSnapshot 当前帧的 PNG 快照
func (s *Server) handleGetSnapshot(c *gin.Context) {
	frame := s.hub.Snapshot()
	if frame.Seq == 0 {
		c.JSON(http.StatusNotFound, ApiResponse{
			Status: "error",
			Error:  "图表尚未渲染",
		})
		return
	}

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, frame, s.canvas()); err != nil {
		c.JSON(http.StatusInternalServerError, ApiResponse{
			Status: "error",
			Error:  fmt.Sprintf("渲染快照失败：%v", err),
		})
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// handleChartStream 以 SSE 推送每一帧，事件名为 frame
func (s *Server) handleChartStream(c *gin.Context) {
	frames, cancel := s.hub.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	log.Debugf("📡 帧流订阅者已连接: %s", c.ClientIP())

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case frame, ok := <-frames:
			if !ok {
				return false
			}
			data, err := frame.Encode()
			if err != nil {
				log.Errorf("❌ 编码帧 %d 失败: %v", frame.Seq, err)
				return false
			}
			c.SSEvent("frame", string(data))
			return true
		}
	})

	log.Debugf("📴 帧流订阅者已断开: %s", c.ClientIP())
}
