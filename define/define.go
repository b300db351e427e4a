package define

// 默认值
const (
	DefaultSpeedMs      = 100
	MaxSpeedMs          = 1<<31 - 1 // 与浏览器 setInterval 的上限一致
	DefaultHost         = "0.0.0.0"
	DefaultPort         = "9099"
	DefaultWidth        = 600
	DefaultHeight       = 400
	DefaultTitle        = "Animated Chart"
	DefaultDatasetLabel = "Dynamic"
	DefaultLineColor    = "#007ACC"
	DefaultBarColor     = "#FF5733aa"
	DefaultBgColor      = "#ffffff"
	DefaultAxisColor    = "#000000"
)

// Palette 折线/柱状两种模式下使用的颜色，以及背景色和坐标轴颜色
type Palette struct {
	Line       string `yaml:"line" json:"line"`
	Bar        string `yaml:"bar" json:"bar"`
	Background string `yaml:"background" json:"background"`
	Axis       string `yaml:"axis" json:"axis"`
}

// ColorFor 返回指定模式的颜色
func (p Palette) ColorFor(mode DisplayMode) string {
	if mode == ModeBar {
		return p.Bar
	}
	return p.Line
}

// DefaultPalette 内置配色
func DefaultPalette() Palette {
	return Palette{
		Line:       DefaultLineColor,
		Bar:        DefaultBarColor,
		Background: DefaultBgColor,
		Axis:       DefaultAxisColor,
	}
}

// Merge 用 override 中非空的字段覆盖 p
func (p Palette) Merge(override Palette) Palette {
	if override.Line != "" {
		p.Line = override.Line
	}
	if override.Bar != "" {
		p.Bar = override.Bar
	}
	if override.Background != "" {
		p.Background = override.Background
	}
	if override.Axis != "" {
		p.Axis = override.Axis
	}
	return p
}

// 配置结构体
type Config struct {
	Host           string   `yaml:"host" json:"host"`
	WebPort        string   `yaml:"port" json:"port"`
	DefaultSpeedMs int      `yaml:"default_speed_ms" json:"default_speed_ms"`
	Width          int      `yaml:"width" json:"width"`
	Height         int      `yaml:"height" json:"height"`
	Title          string   `yaml:"title" json:"title"`
	DatasetLabel   string   `yaml:"dataset_label" json:"dataset_label"`
	Palette        Palette  `yaml:"palette" json:"palette"`
	AllowOrigins   []string `yaml:"allow_origins" json:"allow_origins"`
	Autostart      bool     `yaml:"autostart" json:"autostart"`
	LogLevel       string   `yaml:"log_level" json:"log_level"`
	ConfigFile     string   `yaml:"-" json:"-"`
}

// DefaultConfig 返回内置默认配置
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultHost,
		WebPort:        DefaultPort,
		DefaultSpeedMs: DefaultSpeedMs,
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		Title:          DefaultTitle,
		DatasetLabel:   DefaultDatasetLabel,
		Palette:        DefaultPalette(),
		AllowOrigins:   []string{"*"},
		LogLevel:       "info",
	}
}

// Addr 返回 HTTP 监听地址
func (c *Config) Addr() string {
	return c.Host + ":" + c.WebPort
}

// API 响应结构体
type ApiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}
