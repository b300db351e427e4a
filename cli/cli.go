package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"chartanim/config"
	"chartanim/define"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const version = "v1.0.0"

// Handlers 各子命令的执行函数，由 main 注入
type Handlers struct {
	Serve   func(ctx context.Context, cfg *define.Config, overlay config.Overlay) error
	Watch   func(ctx context.Context, opts WatchOptions) error
	Preview func(ctx context.Context, opts PreviewOptions) error
}

// WatchOptions watch 子命令参数
type WatchOptions struct {
	URL    string
	Width  int
	Height int
	Clear  bool
}

// PreviewOptions preview 子命令参数
type PreviewOptions struct {
	Mode    define.DisplayMode
	SpeedMs int
	Frames  int
	Width   int
	Height  int
	Clear   bool
}

type serveFlags struct {
	configFile   string
	host         string
	port         string
	speed        int
	allowOrigins []string
	autostart    bool
}

var (
	logLevel string
	verbose  bool
)

// NewRootCommand 根命令启动 Web 服务，另有 watch 和 preview 两个终端子命令
func NewRootCommand(ctx context.Context, h Handlers) *cobra.Command {
	var sf serveFlags

	cmd := &cobra.Command{
		Use:               "chartanim",
		Short:             "Serve an animated sine chart over HTTP",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, overlay, err := ParseConfig(cmd.Flags(), sf)
			if err != nil {
				return err
			}
			return h.Serve(ctx, cfg, overlay)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&logLevel, "log-level", "", "日志级别 (debug, info, warn, error)")
	persistent.BoolVarP(&verbose, "verbose", "V", false, "输出调试日志")

	flags := cmd.Flags()
	flags.StringVarP(&sf.configFile, "config", "c", "", "配置文件路径 (.yaml / .json / .jsonc)")
	flags.StringVar(&sf.host, "host", define.DefaultHost, "Web 服务监听地址")
	flags.StringVarP(&sf.port, "port", "p", define.DefaultPort, "Web 服务的端口")
	flags.IntVar(&sf.speed, "speed", define.DefaultSpeedMs, "默认动画间隔 (毫秒)")
	flags.StringSliceVar(&sf.allowOrigins, "allow-origins", []string{"*"}, "CORS 允许的域，用逗号分隔")
	flags.BoolVar(&sf.autostart, "autostart", false, "启动后立即开始折线动画")

	cmd.AddCommand(newWatchCommand(ctx, h), newPreviewCommand(ctx, h))

	return cmd
}

func preRun(cmd *cobra.Command, args []string) error {
	level := logLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" && level == "" {
		level = env
	}
	if verbose {
		level = "debug"
	}
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("无效的日志级别 %q: %w", level, err)
		}
		log.SetLevel(parsed)
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		log.Debugf("FLAG: --%s=%q", f.Name, f.Value)
	})
	return nil
}

// ParseConfig 按 默认值 → 配置文件 → 环境变量 → 显式命令行参数 的顺序合并配置。
// 返回的 Overlay 是配置文件之上的部分，配置文件重新加载时要再叠加一次。
func ParseConfig(flags *pflag.FlagSet, sf serveFlags) (*define.Config, config.Overlay, error) {
	path := sf.configFile
	if env := os.Getenv("CHART_CONFIG"); env != "" && !flags.Changed("config") {
		path = env
	}

	overlay := overrides(flags, sf)
	cfg, err := config.Reload(path, overlay)
	if err != nil {
		return nil, nil, err
	}
	return cfg, overlay, nil
}

// overrides 在解析时固定环境变量和命令行参数的取值
func overrides(flags *pflag.FlagSet, sf serveFlags) config.Overlay {
	var layers []config.Overlay

	// 环境变量覆盖配置文件
	if env := os.Getenv("CHART_HOST"); env != "" {
		layers = append(layers, func(cfg *define.Config) { cfg.Host = env })
	}
	if env := os.Getenv("WEB_PORT"); env != "" {
		layers = append(layers, func(cfg *define.Config) { cfg.WebPort = env })
	}
	if env := os.Getenv("DEFAULT_SPEED_MS"); env != "" {
		speed := define.ParseSpeed(env)
		layers = append(layers, func(cfg *define.Config) { cfg.DefaultSpeedMs = speed })
	}
	if env := os.Getenv("ALLOW_ORIGINS"); env != "" {
		origins := splitList(env)
		layers = append(layers, func(cfg *define.Config) { cfg.AllowOrigins = origins })
	}

	// 显式指定的命令行参数优先级最高
	if flags.Changed("host") {
		layers = append(layers, func(cfg *define.Config) { cfg.Host = sf.host })
	}
	if flags.Changed("port") {
		layers = append(layers, func(cfg *define.Config) { cfg.WebPort = sf.port })
	}
	if flags.Changed("speed") {
		speed := define.NormalizeSpeed(sf.speed)
		layers = append(layers, func(cfg *define.Config) { cfg.DefaultSpeedMs = speed })
	}
	if flags.Changed("allow-origins") {
		layers = append(layers, func(cfg *define.Config) { cfg.AllowOrigins = sf.allowOrigins })
	}
	if flags.Changed("autostart") {
		layers = append(layers, func(cfg *define.Config) { cfg.Autostart = sf.autostart })
	}
	if level := logLevel; level != "" {
		layers = append(layers, func(cfg *define.Config) { cfg.LogLevel = level })
	}

	return func(cfg *define.Config) {
		for _, layer := range layers {
			layer(cfg)
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		// 清理空白字符
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newWatchCommand(ctx context.Context, h Handlers) *cobra.Command {
	var opts WatchOptions

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Render the frames of a running server in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.Watch(ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.URL, "url", "u", "http://127.0.0.1:"+define.DefaultPort, "服务根地址")
	flags.IntVar(&opts.Width, "width", 60, "图表宽度 (字符)")
	flags.IntVar(&opts.Height, "height", 12, "图表高度 (行)")
	flags.BoolVar(&opts.Clear, "clear", true, "每帧清屏")

	return cmd
}

func newPreviewCommand(ctx context.Context, h Handlers) *cobra.Command {
	var (
		opts  PreviewOptions
		mode  string
		speed string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Run the animation locally and draw it in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := define.ParseMode(mode)
			if err != nil {
				return err
			}
			opts.Mode = parsed
			opts.SpeedMs = define.ParseSpeed(speed)
			return h.Preview(ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&mode, "mode", "m", "line", "图表类型 (line, bar)")
	flags.StringVarP(&speed, "speed", "s", "100", "动画间隔 (毫秒)")
	flags.IntVarP(&opts.Frames, "frames", "n", 0, "帧数限制，0 表示一直运行")
	flags.IntVar(&opts.Width, "width", 60, "图表宽度 (字符)")
	flags.IntVar(&opts.Height, "height", 12, "图表高度 (行)")
	flags.BoolVar(&opts.Clear, "clear", true, "每帧清屏")

	return cmd
}
