package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Logger struct {
	mu      sync.Mutex
	console io.Writer
	file    io.Writer
	verbose bool
}

type Event struct {
	TS         string `json:"ts"`
	Level      string `json:"level"`
	Event      string `json:"event"`
	Input      string `json:"input,omitempty"`
	Song       string `json:"song,omitempty"`
	Lines      int    `json:"lines,omitempty"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	Attempt    int    `json:"attempt,omitempty"`
	WaitMS     int64  `json:"wait_ms,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

// New writes NDJSON to stdout when verbose, short human lines otherwise.
// A non-empty logFile always receives NDJSON.
func New(stdout io.Writer, logFile string, verbose bool) (*Logger, io.Closer, error) {
	l := &Logger{console: stdout, verbose: verbose}
	if logFile == "" {
		return l, nil, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败（%s）：%w", logFile, err)
	}
	l.file = f
	return l, f, nil
}

func (l *Logger) Emit(ev Event) {
	if l == nil {
		return
	}
	if ev.TS == "" {
		ev.TS = time.Now().Format(time.RFC3339Nano)
	}
	if ev.Level == "" {
		ev.Level = "info"
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_, _ = l.file.Write(b)
	}
	if l.console == nil {
		return
	}
	if l.verbose {
		_, _ = l.console.Write(b)
		return
	}
	if line := formatHuman(ev); line != "" {
		_, _ = io.WriteString(l.console, line+"\n")
	}
}

func formatHuman(ev Event) string {
	name := fallback(ev.Song, ev.Input)
	switch ev.Event {
	case "scan_warning":
		return "扫描提示：" + ev.Error
	case "parse_failed":
		return fmt.Sprintf("解析失败：%s（%s）", ev.Input, ev.Error)
	case "import_failed":
		return fmt.Sprintf("导入失败：%s（%s）", name, ev.Error)
	case "import_ok":
		return fmt.Sprintf("已导入：%s（%d 行）", name, ev.Lines)
	case "api_request":
		return fmt.Sprintf("开始生成：%s（%s / %s）", name, ev.Provider, ev.Model)
	case "api_retry":
		return fmt.Sprintf("第 %d 次重试，等待 %s：%s", ev.Attempt, formatHumanDurationMS(ev.WaitMS), ev.Error)
	case "api_response":
		return fmt.Sprintf("生成完成：%s，耗时 %s", name, formatHumanDurationMS(ev.LatencyMS))
	case "generate_failed":
		return fmt.Sprintf("生成失败：%s（%s）", name, ev.Error)
	case "write_ok":
		return "已写入：" + ev.OutputFile
	case "write_failed":
		return fmt.Sprintf("写入失败：%s（%s）", fallback(ev.OutputFile, name), ev.Error)
	case "finished":
		return "完成：" + ev.Error
	default:
		return ""
	}
}

func formatHumanDurationMS(ms int64) string {
	if ms <= 0 {
		return "0ms"
	}
	d := time.Duration(ms) * time.Millisecond
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", ms)
	case d < time.Minute:
		return fmt.Sprintf("%.2fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
