package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chartanim/animator"
	"chartanim/api"
	"chartanim/cli"
	"chartanim/communication"
	"chartanim/config"
	"chartanim/define"
	"chartanim/render"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const version = "1.0.0"

var (
	shutdownSignals      = []os.Signal{os.Interrupt, syscall.SIGTERM}
	onlyOneSignalHandler = make(chan struct{})
)

// SetupSignalHandler 第一次信号取消 ctx，第二次信号直接退出
func SetupSignalHandler() context.Context {
	close(onlyOneSignalHandler)

	c := make(chan os.Signal, 2)
	ctx, cancel := context.WithCancel(context.Background())
	signal.Notify(c, shutdownSignals...)

	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx
}

// 初始化服务
func initService(cfg *define.Config) {
	log.Infof("🔧 服务配置：")
	log.Infof("   - 监听地址: %s", cfg.Addr())
	log.Infof("   - 默认速度: %dms", cfg.DefaultSpeedMs)
	log.Infof("   - 图表尺寸: %dx%d", cfg.Width, cfg.Height)
	log.Infof("   - 配色: line=%s bar=%s background=%s axis=%s",
		cfg.Palette.Line, cfg.Palette.Bar, cfg.Palette.Background, cfg.Palette.Axis)
	if cfg.ConfigFile != "" {
		log.Infof("   - 配置文件: %s", cfg.ConfigFile)
	}
}

func runServer(ctx context.Context, cfg *define.Config, overlay config.Overlay) error {
	log.Infof("🚀 启动图表动画服务")
	initService(cfg)

	hub := render.NewHub(cfg.DatasetLabel)
	anim := animator.New(hub,
		animator.WithPalette(cfg.Palette),
		animator.WithDefaultSpeed(cfg.DefaultSpeedMs),
	)
	if err := anim.Initialize(); err != nil {
		return err
	}
	defer anim.Stop()

	if cfg.Autostart {
		if err := anim.Start(define.ModeLine, cfg.DefaultSpeedMs); err != nil {
			return err
		}
	}

	if cfg.ConfigFile != "" {
		err := config.Watch(ctx, cfg.ConfigFile, overlay, func(updated *define.Config) {
			anim.SetPalette(updated.Palette)
			anim.SetDefaultSpeed(updated.DefaultSpeedMs)
		})
		if err != nil {
			log.Warnf("⚠️ 无法监听配置文件: %v", err)
		}
	}

	// 设置 Gin 模式
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	r := gin.New()
	r.Use(gin.LoggerWithWriter(log.StandardLogger().Writer()), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowsAll(cfg.AllowOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// 设置 API 路由
	api.NewServer(anim, hub, cfg, version).SetupRoutes(r)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("🌐 图表动画服务运行在 http://%s", cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Errorf("❌ 服务启动失败: %v", err)
		return err
	case <-ctx.Done():
	}

	log.Infof("👋 正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func runWatch(ctx context.Context, opts cli.WatchOptions) error {
	term := render.NewTerminal(os.Stdout, opts.Width, opts.Height, opts.Clear)
	client := communication.NewStreamClient(opts.URL)
	return client.Watch(ctx, term.Draw)
}

func runPreview(ctx context.Context, opts cli.PreviewOptions) error {
	term := render.NewTerminal(os.Stdout, opts.Width, opts.Height, opts.Clear)
	anim := animator.New(term)
	if err := anim.Initialize(); err != nil {
		return err
	}

	err := anim.StartWith(animator.StartOptions{
		Mode:    opts.Mode,
		SpeedMs: opts.SpeedMs,
		Frames:  opts.Frames,
	})
	if err != nil {
		return err
	}
	defer anim.Stop()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !anim.IsRunning() {
				return nil
			}
		}
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{TimestampFormat: "2006-01-02 15:04:05", FullTimestamp: true})

	cmd := cli.NewRootCommand(SetupSignalHandler(), cli.Handlers{
		Serve:   runServer,
		Watch:   runWatch,
		Preview: runPreview,
	})

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
