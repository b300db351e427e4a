package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chartanim/define"

	"github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Load 从默认值开始，叠加配置文件中的字段。path 为空时只返回默认值，
// 文件不存在时返回默认值和错误。
func Load(path string) (*define.Config, error) {
	cfg := define.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置文件失败：%w", err)
	}

	if err := decode(path, raw, cfg); err != nil {
		return cfg, fmt.Errorf("解析配置文件失败：%w", err)
	}
	cfg.ConfigFile = path

	Normalize(cfg)
	return cfg, nil
}

// Overlay 叠加在配置文件之上的覆盖层 (环境变量和显式命令行参数)
type Overlay func(*define.Config)

// Reload 读取配置文件，叠加 overlay 后补齐默认值。
// 启动时和配置文件变化时都走这里，保证覆盖层的优先级不变。
func Reload(path string, overlay Overlay) (*define.Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if overlay != nil {
		overlay(cfg)
	}
	Normalize(cfg)
	return cfg, nil
}

// Save 按扩展名把配置写入文件
func Save(cfg *define.Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("序列化配置失败：%w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败：%w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("保存配置文件失败：%w", err)
	}
	return nil
}

// SavePalette 把配色合并进配置文件，文件中的其他字段按原值写回
func SavePalette(path string, p define.Palette) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	cfg.Palette = cfg.Palette.Merge(p)
	return Save(cfg, path)
}

// Normalize 把缺失或非法的字段恢复为默认值
func Normalize(cfg *define.Config) {
	def := define.DefaultConfig()

	cfg.DefaultSpeedMs = define.NormalizeSpeed(cfg.DefaultSpeedMs)
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.WebPort == "" {
		cfg.WebPort = def.WebPort
	}
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.Title == "" {
		cfg.Title = def.Title
	}
	if cfg.DatasetLabel == "" {
		cfg.DatasetLabel = def.DatasetLabel
	}
	cfg.Palette = def.Palette.Merge(cfg.Palette)
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = def.AllowOrigins
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

func decode(path string, raw []byte, cfg *define.Config) error {
	if isJSON(path) {
		return json.Unmarshal(jsonc.ToJSON(raw), cfg)
	}

	return yaml.Unmarshal(raw, cfg)
}

// isJSON .json 和 .jsonc 按 JSON (允许注释) 解析，其他按 YAML
func isJSON(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return true
	}
	return false
}
