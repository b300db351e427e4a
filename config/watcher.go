package config

import (
	"context"
	"fmt"
	"path/filepath"

	"chartanim/define"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watch 监听配置文件，文件被写入或替换后重新加载，叠加 overlay 并回调 onChange。
// 监听的是文件所在目录，编辑器先删后建的保存方式也能被捕获。
// ctx 结束时停止监听。
func Watch(ctx context.Context, path string, overlay Overlay, onChange func(*define.Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败：%w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("解析配置路径失败：%w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("监听配置目录失败：%w", err)
	}

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("⚠️ 配置文件监听出错: %v", err)
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				cfg, err := Reload(abs, overlay)
				if err != nil {
					log.Warnf("⚠️ 重新加载配置失败: %v", err)
					continue
				}
				log.Infof("🔄 配置文件已重新加载: %s", abs)
				onChange(cfg)
			}
		}
	}()

	return nil
}
