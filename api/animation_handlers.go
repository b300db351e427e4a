package api

import (
	"fmt"
	"net/http"

	"chartanim/animator"
	"chartanim/config"
	"chartanim/define"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (s *Server) animationStatus() AnimationStatusResponse {
	return AnimationStatusResponse{
		Status:         s.animator.Status(),
		Palette:        s.animator.Palette(),
		DefaultSpeedMs: s.animator.DefaultSpeed(),
	}
}

// handleAnimationStatus 获取动画状态
func (s *Server) handleAnimationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ApiResponse{
		Status: "success",
		Data:   s.animationStatus(),
	})
}

// handleStartAnimation 启动动画
func (s *Server) handleStartAnimation(c *gin.Context) {
	var req AnimationStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ApiResponse{
			Status: "error",
			Error:  "无效的动画请求：" + err.Error(),
		})
		return
	}

	mode, err := define.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, ApiResponse{
			Status: "error",
			Error:  fmt.Sprintf("无效的图表类型：%s，可用类型：[line bar]", req.Mode),
		})
		return
	}

	// 处理速度参数
	speedMs := define.ParseSpeedOr(string(req.Speed), s.animator.DefaultSpeed())

	if err := s.animator.StartWith(animator.StartOptions{
		Mode:    mode,
		SpeedMs: speedMs,
		Frames:  req.Frames,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, ApiResponse{
			Status: "error",
			Error:  fmt.Sprintf("启动动画失败：%v", err),
		})
		return
	}

	c.JSON(http.StatusOK, ApiResponse{
		Status:  "success",
		Message: fmt.Sprintf("%s 动画已启动", mode),
		Data:    s.animationStatus(),
	})
}

// handleStopAnimation 停止动画
func (s *Server) handleStopAnimation(c *gin.Context) {
	if !s.animator.IsRunning() {
		c.JSON(http.StatusOK, ApiResponse{
			Status:  "success",
			Message: "当前没有动画在运行",
			Data:    s.animationStatus(),
		})
		return
	}

	s.animator.Stop()

	c.JSON(http.StatusOK, ApiResponse{
		Status:  "success",
		Message: "动画已停止",
		Data:    s.animationStatus(),
	})
}

// handleSetPalette 设置折线/柱状、背景和坐标轴配色，有配置文件时同时写回文件
func (s *Server) handleSetPalette(c *gin.Context) {
	var req PaletteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ApiResponse{
			Status: "error",
			Error:  "无效的配色请求：" + err.Error(),
		})
		return
	}

	update := define.Palette{
		Line:       req.Line,
		Bar:        req.Bar,
		Background: req.Background,
		Axis:       req.Axis,
	}
	if update == (define.Palette{}) {
		c.JSON(http.StatusBadRequest, ApiResponse{
			Status: "error",
			Error:  "至少需要设置 line、bar、background 或 axis 其中一个颜色",
		})
		return
	}

	palette := s.animator.SetPalette(update)

	if path := s.config.ConfigFile; path != "" {
		if err := config.SavePalette(path, update); err != nil {
			log.Errorf("❌ 保存配色失败: %v", err)
			c.JSON(http.StatusInternalServerError, ApiResponse{
				Status: "error",
				Error:  fmt.Sprintf("配色已生效，但写入配置文件失败：%v", err),
				Data:   palette,
			})
			return
		}
	}

	c.JSON(http.StatusOK, ApiResponse{
		Status:  "success",
		Message: "配色已更新，下一次启动动画时生效",
		Data:    palette,
	})
}
