package activity

import (
	"bytes"
	"context"
	"log/slog"
)

// Handler forwards records to next and copies those at or above minLevel into the log.
// Attributes are flattened to "group.key=value".
type Handler struct {
	next     slog.Handler
	log      *Log
	minLevel slog.Level
	attrs    []slog.Attr // already qualified with their group prefix
	prefix   string
}

func NewHandler(next slog.Handler, log *Log, minLevel slog.Level) *Handler {
	return &Handler{next: next, log: log, minLevel: minLevel}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.minLevel || h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minLevel {
		h.log.Add(r.Level, h.format(r))
	}

	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		cp.attrs = append(cp.attrs, qualify(h.prefix, a)...)
	}
	cp.next = h.next.WithAttrs(attrs)
	return &cp
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	cp := *h
	cp.prefix = h.prefix + name + "."
	cp.next = h.next.WithGroup(name)
	return &cp
}

// format flattens the message and attributes into "msg k=v k=v".
func (h *Handler) format(r slog.Record) string {
	var buf bytes.Buffer
	buf.WriteString(r.Message)

	write := func(a slog.Attr) {
		buf.WriteString(" ")
		buf.WriteString(a.Key)
		buf.WriteString("=")
		buf.WriteString(a.Value.String())
	}

	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		for _, q := range qualify(h.prefix, a) {
			write(q)
		}
		return true
	})

	return buf.String()
}

// qualify prefixes the key and expands group values into one attr per leaf.
func qualify(prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		if a.Equal(slog.Attr{}) {
			return nil
		}
		return []slog.Attr{{Key: prefix + a.Key, Value: a.Value}}
	}

	groupPrefix := prefix
	if a.Key != "" {
		groupPrefix = prefix + a.Key + "."
	}

	var out []slog.Attr
	for _, ga := range a.Value.Group() {
		out = append(out, qualify(groupPrefix, ga)...)
	}
	return out
}
