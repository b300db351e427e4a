package animator

import (
	"fmt"
	"sync"
	"time"

	"chartanim/define"
	"chartanim/metrics"
	"chartanim/sample"

	log "github.com/sirupsen/logrus"
)

// Status 动画状态快照
type Status struct {
	IsRunning  bool               `json:"isRunning"`
	Mode       define.DisplayMode `json:"mode"`
	Phase      int                `json:"phase"`
	IntervalMs int                `json:"intervalMs"`
	Frames     int                `json:"frames,omitempty"`
	StartedAt  time.Time          `json:"startedAt,omitzero"`
}

// StartOptions 启动参数
type StartOptions struct {
	Mode    define.DisplayMode
	SpeedMs int // 非正数使用默认速度
	Frames  int // 大于 0 时在该 tick 数后自动停止，0 表示无限
}

// Animator 生成采样序列并驱动渲染器。
// 同一时刻最多只有一个定时器在运行，新的 Start 会先取消旧的定时器。
type Animator struct {
	renderer  Renderer
	scheduler Scheduler

	mu           sync.Mutex // 保护以下全部字段
	timer        Timer
	generation   uint64 // 每次启动或停止递增，过期定时器的 tick 会被丢弃
	palette      define.Palette
	defaultSpeed int
	mode         define.DisplayMode
	phase        int
	intervalMs   int
	frames       int
	startedAt    time.Time
}

// Option 配置 Animator
type Option func(*Animator)

// WithScheduler 替换默认的 time.Ticker 调度器
func WithScheduler(s Scheduler) Option {
	return func(a *Animator) { a.scheduler = s }
}

// WithPalette 设置折线/柱状配色
func WithPalette(p define.Palette) Option {
	return func(a *Animator) { a.palette = a.palette.Merge(p) }
}

// WithDefaultSpeed 设置速度无效时使用的间隔
func WithDefaultSpeed(ms int) Option {
	return func(a *Animator) { a.defaultSpeed = define.NormalizeSpeed(ms) }
}

// New 创建一个新的 Animator
func New(renderer Renderer, opts ...Option) *Animator {
	a := &Animator{
		renderer:     renderer,
		scheduler:    TickerScheduler{},
		defaultSpeed: define.DefaultSpeedMs,
		palette:      define.DefaultPalette(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize 生成初始折线序列并静态渲染一次，不启动定时器
func (a *Animator) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	a.mode = define.ModeLine
	a.phase = 0
	a.frames = 0
	a.startedAt = time.Time{}

	// 初始样式：描边用折线色，填充用柱状色
	a.renderer.SetStyle(define.ModeLine, Style{
		Stroke:      a.palette.Line,
		Fill:        a.palette.Bar,
		BorderWidth: defaultBorderWidth,
		Background:  a.palette.Background,
		Axis:        a.palette.Axis,
	})
	a.renderer.SetData(sample.Generate(define.ModeLine, 0).Values())

	if err := a.renderer.Update(); err != nil {
		return fmt.Errorf("initial render: %w", err)
	}
	return nil
}

// Start 以指定模式和间隔启动动画
func (a *Animator) Start(mode define.DisplayMode, speedMs int) error {
	return a.StartWith(StartOptions{Mode: mode, SpeedMs: speedMs})
}

// StartWith 取消已有定时器，重置相位，切换渲染模式和配色，然后开始周期性 tick
func (a *Animator) StartWith(opts StartOptions) error {
	if opts.Mode != define.ModeLine && opts.Mode != define.ModeBar {
		return fmt.Errorf("%w: %d", define.ErrUnknownMode, opts.Mode)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	intervalMs := opts.SpeedMs
	if intervalMs <= 0 {
		intervalMs = a.defaultSpeed
	}
	// 超大间隔换算成 time.Duration 会溢出
	intervalMs = min(intervalMs, define.MaxSpeedMs)
	frames := max(opts.Frames, 0)

	if a.timer != nil {
		log.Infof("ℹ️ 正在停止当前 %s 动画以启动 %s 动画", a.mode, opts.Mode)
	}
	a.cancelLocked()

	a.generation++
	generation := a.generation
	a.mode = opts.Mode
	a.phase = 0
	a.intervalMs = intervalMs
	a.frames = frames
	a.startedAt = time.Now()

	color := a.palette.ColorFor(opts.Mode)
	a.renderer.SetStyle(opts.Mode, Style{
		Stroke:      color,
		Fill:        color,
		BorderWidth: defaultBorderWidth,
		Background:  a.palette.Background,
		Axis:        a.palette.Axis,
	})
	if err := a.renderer.Update(); err != nil {
		log.Warnf("⚠️ 切换到 %s 模式后重绘失败: %v", opts.Mode, err)
	}

	a.timer = a.scheduler.Every(time.Duration(intervalMs)*time.Millisecond, func() {
		a.scheduledTick(generation)
	})
	metrics.AnimationStarts.WithLabelValues(opts.Mode.String()).Inc()
	metrics.TickInterval.Set(float64(intervalMs))

	log.Infof("🚀 %s 动画已启动 (间隔: %dms, 帧数限制: %d)", opts.Mode, intervalMs, frames)
	return nil
}

// Stop 停止当前动画，没有动画在运行时什么都不做
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.timer == nil {
		log.Debugf("ℹ️ 当前没有动画在运行")
		return
	}

	a.cancelLocked()
	log.Infof("🛑 %s 动画已停止 (相位: %d)", a.mode, a.phase)
}

// Tick 推进一个相位，重新计算全部采样值并重绘
func (a *Animator) Tick() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tickLocked()
}

// scheduledTick 定时器回调，丢弃已被取代的定时器产生的 tick
func (a *Animator) scheduledTick(generation uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if generation != a.generation || a.timer == nil {
		return
	}
	if err := a.tickLocked(); err != nil {
		log.Errorf("❌ %v", err)
	}
}

func (a *Animator) tickLocked() error {
	a.phase++
	a.renderer.SetData(sample.Generate(a.mode, a.phase).Values())
	err := a.renderer.Update()

	if a.frames > 0 && a.phase >= a.frames && a.timer != nil {
		a.cancelLocked()
		log.Infof("👋 %s 动画已完成 %d 帧", a.mode, a.frames)
	}

	if err != nil {
		return fmt.Errorf("redraw at phase %d: %w", a.phase, err)
	}
	return nil
}

// cancelLocked 取消当前定时器，调用方必须持有锁
func (a *Animator) cancelLocked() {
	if a.timer == nil {
		return
	}
	a.timer.Stop()
	a.timer = nil
	a.generation++
	metrics.TickInterval.Set(0)
}

// IsRunning 是否有动画在运行
func (a *Animator) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

// Status 返回当前状态
func (a *Animator) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	return Status{
		IsRunning:  a.timer != nil,
		Mode:       a.mode,
		Phase:      a.phase,
		IntervalMs: a.intervalMs,
		Frames:     a.frames,
		StartedAt:  a.startedAt,
	}
}

// Palette 返回当前配色
func (a *Animator) Palette() define.Palette {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.palette
}

// SetPalette 覆盖配色，空字段保持不变，下一次 Start 时生效
func (a *Animator) SetPalette(p define.Palette) define.Palette {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.palette = a.palette.Merge(p)
	return a.palette
}

// DefaultSpeed 返回默认间隔
func (a *Animator) DefaultSpeed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.defaultSpeed
}

// SetDefaultSpeed 修改默认间隔，不影响正在运行的动画
func (a *Animator) SetDefaultSpeed(ms int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.defaultSpeed = define.NormalizeSpeed(ms)
}
