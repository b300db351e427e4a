package render

import (
	"fmt"
	"html"
	"io"
	"strconv"

	"chartanim/define"

	"github.com/goccy/go-json"
	"github.com/valyala/fasttemplate"
)

// PageParams 渲染页面所需的参数
type PageParams struct {
	Canvas    Canvas
	Frame     Frame
	Mode      define.DisplayMode
	SpeedMs   int
	APIPrefix string
}

var pageTemplate = fasttemplate.New(pageHTML, "{{", "}}")

// WritePage 渲染带控制面板的图表页面
func WritePage(w io.Writer, p PageParams) error {
	option, err := json.Marshal(Option(p.Frame, p.Canvas))
	if err != nil {
		return fmt.Errorf("encode chart option: %w", err)
	}

	lineSelected, barSelected := "selected", ""
	if p.Mode == define.ModeBar {
		lineSelected, barSelected = "", "selected"
	}

	_, err = pageTemplate.Execute(w, map[string]interface{}{
		"title":        html.EscapeString(p.Canvas.Title),
		"chartId":      ChartID,
		"width":        strconv.Itoa(p.Canvas.Width),
		"height":       strconv.Itoa(p.Canvas.Height),
		"option":       option,
		"lineSelected": lineSelected,
		"barSelected":  barSelected,
		"speed":        strconv.Itoa(p.SpeedMs),
		"api":          html.EscapeString(p.APIPrefix),
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html>

<head>
	<meta charset="utf-8">
	<title>{{title}}</title>
	<script src="https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"></script>
	<style>
	body { font-family: sans-serif; margin: 2em; }
	.controls { margin-bottom: 1em; display: flex; gap: 0.5em; align-items: center; }
	</style>
</head>

<body>
	<div class="controls">
		<label for="type">Type</label>
		<select id="type">
			<option value="line" {{lineSelected}}>line</option>
			<option value="bar" {{barSelected}}>bar</option>
		</select>
		<label for="speed">Speed (ms)</label>
		<input id="speed" type="text" value="{{speed}}" size="6">
		<button id="startBtn">Start</button>
		<button id="stopBtn">Stop</button>
	</div>
	<div id="{{chartId}}" style="width: {{width}}px; height: {{height}}px;"></div>

	<script>
	const chart = echarts.init(document.getElementById('{{chartId}}'), null, { width: {{width}}, height: {{height}} });
	chart.setOption({{option}});

	function draw(frame) {
		const series = { type: frame.mode, name: frame.label, data: frame.values };
		series.itemStyle = { color: frame.style.fill, borderColor: frame.style.stroke };
		if (frame.mode === 'line') {
			series.lineStyle = { color: frame.style.stroke, width: frame.style.borderWidth };
		}
		const axis = { axisLine: { lineStyle: { color: frame.style.axis } }, axisLabel: { color: frame.style.axis } };
		chart.setOption({
			animation: false,
			backgroundColor: frame.style.background,
			xAxis: Object.assign({ data: frame.labels }, axis),
			yAxis: axis,
			series: [series],
		});
	}

	const stream = new EventSource('{{api}}/chart/stream');
	stream.addEventListener('frame', (e) => draw(JSON.parse(e.data)));

	function post(path, body) {
		return fetch('{{api}}' + path, {
			method: 'POST',
			headers: { 'Content-Type': 'application/json' },
			body: JSON.stringify(body || {}),
		});
	}

	document.getElementById('startBtn').onclick = () => post('/animation/start', {
		mode: document.getElementById('type').value,
		speed: document.getElementById('speed').value,
	});
	document.getElementById('stopBtn').onclick = () => post('/animation/stop');
	</script>
</body>

</html>
`
