package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	trueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	falseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	msgStyle    = lipgloss.NewStyle().Bold(true)

	levelStyle = map[Level]lipgloss.Style{
		LevelTrace: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler writes colorized records, either as a single line of
// key=value pairs or as an indented block of key: value lines.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	groups []string
	attrs  []slog.Attr // qualified with the groups active when added
	block  bool
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, block bool) *prettyHandler {
	return &prettyHandler{
		opts:  *opts,
		mu:    &sync.Mutex{},
		w:     w,
		block: block,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		h.write(&buf, h.replace(nil, slog.Time(slog.TimeKey, r.Time)))
	}

	if lvl := h.replace(nil, slog.Any(slog.LevelKey, r.Level)); lvl.Key != "" {
		h.writeKey(&buf, lvl.Key)
		buf.WriteString(levelOf(r.Level).Render(lvl.Value.String()))
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			h.write(&buf, slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	h.writeKey(&buf, slog.MessageKey)
	buf.WriteString(msgStyle.Render(r.Message))

	for _, a := range h.attrs {
		h.write(&buf, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.write(&buf, h.qualify(a))

		return true
	})

	if h.block {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clip(c.attrs)

	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.groups = append(slices.Clip(c.groups), name)

	return &c
}

func (h *prettyHandler) qualify(a slog.Attr) slog.Attr {
	a = h.replace(h.groups, a)
	if a.Key != "" && len(h.groups) > 0 {
		a.Key = strings.Join(h.groups, ".") + "." + a.Key
	}

	return a
}

func (h *prettyHandler) replace(groups []string, a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(groups, a)
	}

	return a
}

func (h *prettyHandler) writeKey(buf *bytes.Buffer, key string) {
	switch {
	case h.block && buf.Len() == 0:
		buf.WriteString("{\n  ")
	case h.block:
		buf.WriteString(",\n  ")
	case buf.Len() > 0:
		buf.WriteByte(' ')
	}

	buf.WriteString(keyStyle.Render(key))

	if h.block {
		buf.WriteString(": ")
	} else {
		buf.WriteByte('=')
	}
}

func (h *prettyHandler) write(buf *bytes.Buffer, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}

	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			if a.Key != "" {
				ga.Key = a.Key + "." + ga.Key
			}

			h.write(buf, ga)
		}

		return
	}

	h.writeKey(buf, a.Key)
	buf.WriteString(render(v))
}

func render(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return stringStyle.Render(v.String())
	case slog.KindInt64:
		return numberStyle.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return numberStyle.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return numberStyle.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return trueStyle.Render("true")
		}

		return falseStyle.Render("false")
	case slog.KindDuration:
		return numberStyle.Render(v.Duration().String())
	case slog.KindTime:
		return timeStyle.Render(v.Time().Format(DefaultTimeLayout))
	}

	if err, ok := v.Any().(error); ok {
		return falseStyle.Render(err.Error())
	}

	return stringStyle.Render(fmt.Sprint(v.Any()))
}

func levelOf(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return levelStyle[LevelError]
	case l >= slog.LevelWarn:
		return levelStyle[LevelWarn]
	case l >= slog.LevelInfo:
		return levelStyle[LevelInfo]
	case l >= slog.LevelDebug:
		return levelStyle[LevelDebug]
	}

	return levelStyle[LevelTrace]
}
