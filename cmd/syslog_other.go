//go:build windows || plan9

package cmd

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"runtime"
)

func NewSyslogHandler(logOpts *slog.HandlerOptions) (slog.Handler, error) {
	return nil, fmt.Errorf("syslog is not available on %s", runtime.GOOS)
}
