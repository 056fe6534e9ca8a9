package desensitize

import (
	"io"
)

// Writer 写出前对每条日志脱敏
type Writer struct {
	out  io.Writer
	hook *Hook
}

// NewWriter out 与 hook 均不能为 nil
func NewWriter(out io.Writer, hook *Hook) *Writer {
	if out == nil || hook == nil {
		panic("desensitize: nil writer or hook")
	}
	return &Writer{out: out, hook: hook}
}

// Write 返回原始长度，zerolog 据此判断是否写全
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook.RuleCount() == 0 {
		return w.out.Write(p)
	}

	text := string(p)
	masked := w.hook.Desensitize(text)
	if masked == text {
		return w.out.Write(p)
	}
	if _, err := io.WriteString(w.out, masked); err != nil {
		return 0, err
	}
	return len(p), nil
}
