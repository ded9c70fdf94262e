//go:build !windows && !plan9

package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"log/syslog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SyslogHandler is a slog.Handler that logs to syslog.
type SyslogHandler struct {
	writer     *syslog.Writer
	logLeveler slog.Leveler
	addSource  bool
	attrs      []slog.Attr
}

func NewSyslogHandler(logOpts *slog.HandlerOptions) (slog.Handler, error) {
	writer, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, filepath.Base(os.Args[0]))
	if err != nil {
		return nil, err
	}
	return &SyslogHandler{writer: writer, logLeveler: logOpts.Level, addSource: logOpts.AddSource}, nil
}

func (h *SyslogHandler) Handle(ctx context.Context, r slog.Record) error {
	var msg string
	if r.PC != 0 && h.addSource {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		msg = fmt.Sprintf("level=%s source=%s:%d msg=%q", r.Level.String(), relativeSourcePath(f.File), f.Line, r.Message)
	} else {
		msg = fmt.Sprintf("level=%s msg=%q", r.Level.String(), r.Message)
	}
	msg += formatSyslogAttrs(h.attrs)
	r.Attrs(func(attr slog.Attr) bool {
		msg += formatSyslogAttrs([]slog.Attr{attr})
		return true
	})
	switch {
	case r.Level < slog.LevelInfo:
		return h.writer.Debug(msg)
	case r.Level < slog.LevelWarn:
		return h.writer.Info(msg)
	case r.Level < slog.LevelError:
		return h.writer.Warning(msg)
	default:
		return h.writer.Err(msg)
	}
}

func (h *SyslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *SyslogHandler) WithGroup(name string) slog.Handler {
	return h
}

func (h *SyslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.logLeveler.Level()
}

func formatSyslogAttrs(attrs []slog.Attr) string {
	var sb strings.Builder
	for _, attr := range attrs {
		sb.WriteString(fmt.Sprintf(" %s=%q", attr.Key, attr.Value.String()))
	}
	return sb.String()
}

// relativeSourcePath returns the file name with path relative to the current working
// directory, prefixed by the last element of the working directory
func relativeSourcePath(filePath string) string {
	if !strings.HasPrefix(filePath, "/") {
		return filePath
	}
	wd, err := os.Getwd()
	if err != nil {
		return filePath
	}
	rel, err := filepath.Rel(wd, filePath)
	if err != nil {
		return filePath
	}
	_, lastWd := filepath.Split(wd)
	return filepath.Join(lastWd, rel)
}
