package render

import (
	"fmt"
	"io"
	"sync"

	"chartanim/animator"
	"chartanim/define"
	"chartanim/sample"

	"github.com/guptarohit/asciigraph"
)

// Terminal 用 asciigraph 把帧画到终端，也可以直接作为 animator.Renderer 使用
type Terminal struct {
	out    io.Writer
	width  int
	height int
	clear  bool

	mu     sync.Mutex
	mode   define.DisplayMode
	style  animator.Style
	values []float64
	seq    uint64
}

var _ animator.Renderer = (*Terminal)(nil)

// NewTerminal 创建终端渲染器，clear 为 true 时每帧先清屏
func NewTerminal(out io.Writer, width, height int, clear bool) *Terminal {
	return &Terminal{out: out, width: width, height: height, clear: clear}
}

func (t *Terminal) SetStyle(mode define.DisplayMode, style animator.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	t.style = style
}

func (t *Terminal) SetData(values []float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = append(t.values[:0], values...)
}

func (t *Terminal) Update() error {
	t.mu.Lock()
	t.seq++
	f := Frame{
		Seq:    t.seq,
		Mode:   t.mode,
		Labels: sample.Labels(),
		Values: append([]float64(nil), t.values...),
		Style:  t.style,
	}
	t.mu.Unlock()

	return t.Draw(f)
}

// Draw 画出一帧
func (t *Terminal) Draw(f Frame) error {
	if len(f.Values) == 0 {
		return nil
	}

	graph := asciigraph.Plot(f.Values,
		asciigraph.Width(t.width),
		asciigraph.Height(t.height),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("%s #%d (%s)", f.Mode, f.Seq, f.Style.Stroke)),
	)

	if t.clear {
		if _, err := fmt.Fprint(t.out, "\033[H\033[2J"); err != nil {
			return fmt.Errorf("clear terminal: %w", err)
		}
	}
	if _, err := fmt.Fprintln(t.out, graph); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
