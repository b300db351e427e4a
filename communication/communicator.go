package communication

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chartanim/render"

	log "github.com/sirupsen/logrus"
	"github.com/ssgreg/repeat"
)

// 默认重连参数
const (
	defaultMaxTries = 10
	defaultBackoff  = 2 * time.Second
	maxEventSize    = 1 << 20
)

// StreamClient 订阅运行中服务的帧流 (SSE)，断线后按固定间隔重连
type StreamClient struct {
	serviceURL string
	client     *http.Client
	maxTries   int
	backoff    time.Duration
}

// Option 配置 StreamClient
type Option func(*StreamClient)

// WithRetry 设置最大尝试次数和重连间隔
func WithRetry(maxTries int, backoff time.Duration) Option {
	return func(c *StreamClient) {
		c.maxTries = maxTries
		c.backoff = backoff
	}
}

// WithHTTPClient 替换默认的 HTTP 客户端
func WithHTTPClient(client *http.Client) Option {
	return func(c *StreamClient) { c.client = client }
}

// NewStreamClient serviceURL 为服务根地址，例如 http://127.0.0.1:9099
func NewStreamClient(serviceURL string, opts ...Option) *StreamClient {
	c := &StreamClient{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		// 流式响应不能设置整体超时
		client:   &http.Client{},
		maxTries: defaultMaxTries,
		backoff:  defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StreamURL 帧流地址
func (c *StreamClient) StreamURL() string {
	return c.serviceURL + "/api/v1/chart/stream"
}

// Watch 持续接收帧直到 ctx 结束。连接失败或中断视为临时错误并重连，
// 收到过帧的连接断开后重连次数重新计算。
// onFrame 返回的错误和服务端的 4xx 响应会立即结束 Watch。
func (c *StreamClient) Watch(ctx context.Context, onFrame func(render.Frame) error) error {
	for {
		delivered, err := c.session(ctx, onFrame)
		if err != nil || !delivered || ctx.Err() != nil {
			return err
		}

		log.Warnf("⚠️ 帧流连接中断，%s 后重连", c.backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.backoff):
		}
	}
}

// session 重复尝试连接，直到某次连接收到过帧后断开、出现不可恢复的错误或用完重试次数
func (c *StreamClient) session(ctx context.Context, onFrame func(render.Frame) error) (bool, error) {
	var (
		stopErr   error
		delivered bool
	)

	err := repeat.Repeat(
		repeat.Fn(func() error {
			if ctx.Err() != nil {
				return nil
			}

			err := c.stream(ctx, func(f render.Frame) error {
				delivered = true
				return onFrame(f)
			})
			if ctx.Err() != nil {
				return nil
			}

			var permanent *permanentError
			if errors.As(err, &permanent) {
				stopErr = permanent.err
				return nil
			}
			if delivered {
				return nil
			}

			log.Warnf("⚠️ 帧流连接失败: %v，%s 后重连", err, c.backoff)
			return repeat.HintTemporary(err)
		}),
		repeat.StopOnSuccess(),
		repeat.LimitMaxTries(c.maxTries),
		repeat.WithDelay(repeat.FixedBackoff(c.backoff).Set()),
	)
	if stopErr != nil {
		return delivered, stopErr
	}
	if err != nil {
		return delivered, fmt.Errorf("订阅帧流失败：%w", err)
	}
	return delivered, nil
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }

// stream 建立一次连接并逐个分发 frame 事件，正常情况下只在连接断开时返回
func (c *StreamClient) stream(ctx context.Context, onFrame func(render.Frame) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StreamURL(), nil)
	if err != nil {
		return &permanentError{fmt.Errorf("创建 HTTP 请求失败：%w", err)}
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送 HTTP 请求失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("服务返回错误: %d, %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &permanentError{err}
		}
		return err
	}

	log.Infof("📡 已连接帧流: %s", c.StreamURL())

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)

	var (
		event string
		data  strings.Builder
	)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if event == "frame" && data.Len() > 0 {
				frame, err := render.DecodeFrame([]byte(data.String()))
				if err != nil {
					log.Warnf("⚠️ 丢弃无法解析的帧: %v", err)
				} else if err := onFrame(frame); err != nil {
					return &permanentError{err}
				}
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("读取帧流失败：%w", err)
	}
	return io.ErrUnexpectedEOF
}
