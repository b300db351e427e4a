package render

import (
	"sync"
	"time"

	"chartanim/animator"
	"chartanim/define"
	"chartanim/metrics"
	"chartanim/sample"
)

// Hub 实现 animator.Renderer：保存最新一帧并推送给所有订阅者。
// 每个订阅者只缓冲一帧，读取慢的订阅者只会丢帧，不会阻塞动画。
type Hub struct {
	label string

	mu          sync.RWMutex
	mode        define.DisplayMode
	style       animator.Style
	values      []float64
	frame       Frame
	subscribers map[chan Frame]struct{}
}

var _ animator.Renderer = (*Hub)(nil)

// NewHub 创建一个 Hub，label 为数据集名称
func NewHub(label string) *Hub {
	return &Hub{
		label:       label,
		subscribers: make(map[chan Frame]struct{}),
	}
}

func (h *Hub) SetStyle(mode define.DisplayMode, style animator.Style) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = mode
	h.style = style
}

func (h *Hub) SetData(values []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values = append(h.values[:0], values...)
}

// Update 生成新的一帧并广播
func (h *Hub) Update() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.frame = Frame{
		Seq:    h.frame.Seq + 1,
		Mode:   h.mode,
		Label:  h.label,
		Labels: sample.Labels(),
		Values: append([]float64(nil), h.values...),
		Style:  h.style,
		Time:   time.Now(),
	}
	metrics.FramesTotal.Inc()

	for ch := range h.subscribers {
		offer(ch, h.frame)
	}
	return nil
}

// Snapshot 返回最新一帧的副本，尚未渲染过时 Seq 为 0
func (h *Hub) Snapshot() Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame.clone()
}

// Subscribe 注册一个订阅者，已有帧时立即推送当前帧。
// 返回的函数用于取消订阅并关闭通道。
func (h *Hub) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, 1)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	if h.frame.Seq > 0 {
		ch <- h.frame.clone()
	}
	h.mu.Unlock()
	metrics.StreamSubscribers.Inc()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			close(ch)
			h.mu.Unlock()
			metrics.StreamSubscribers.Dec()
		})
	}
}

// Subscribers 当前订阅者数量
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// offer 非阻塞发送，缓冲已满时用新帧替换旧帧
func offer(ch chan Frame, f Frame) {
	select {
	case ch <- f.clone():
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- f.clone():
	default:
	}
}
