package animator

import (
	"sync"
	"time"
)

// Timer 一个可取消的周期性定时器
type Timer interface {
	Stop()
}

// Scheduler 按固定间隔重复调用 fn
type Scheduler interface {
	Every(interval time.Duration, fn func()) Timer
}

// TickerScheduler 基于 time.Ticker 的默认调度器，每个定时器一个 goroutine
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{stopChan: make(chan struct{})}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.stopChan:
				return
			case <-ticker.C:
				// ticker 和 stop 同时就绪时 select 随机选择，这里再检查一次
				select {
				case <-t.stopChan:
					return
				default:
				}
				fn()
			}
		}
	}()

	return t
}

type tickerTimer struct {
	stopChan chan struct{}
	once     sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.stopChan) })
}
