// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"time"

	"github.com/holiman/uint256"
	"github.com/mattn/go-isatty"
)

const timeFormat = "2006-01-02T15:04:05-0700"

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (h *discardHandler) WithGroup(_ string) slog.Handler              { return h }
func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler         { return h }

// JSONHandlerWithLevel returns a handler which prints records in JSON format,
// dropping records below level.
func JSONHandlerWithLevel(wr io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: builtinReplaceJSON,
		Level:       level,
	})
}

// TerminalHandlerWithLevel returns a human friendly handler, with coloured levels if useColor.
//
//	t=2025-01-02T15:04:05+0000 lvl=INFO msg="task submitted" pkg=engine id=0x…
func TerminalHandlerWithLevel(wr io.Writer, level slog.Leveler, useColor bool) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			attr = builtinReplace(groups, attr, true)
			if useColor && attr.Key == "lvl" {
				attr.Value = slog.StringValue(colorize(attr.Value.String()))
			}
			return attr
		},
		Level: level,
	})
}

// NewHandler picks the terminal handler when wr is a terminal, JSON otherwise.
func NewHandler(wr io.Writer, level slog.Leveler) slog.Handler {
	if f, ok := wr.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return TerminalHandlerWithLevel(wr, level, true)
		}
	}
	return JSONHandlerWithLevel(wr, level)
}

func colorize(lvl string) string {
	var color int
	switch lvl {
	case "CRIT":
		color = 35
	case "EROR":
		color = 31
	case "WARN":
		color = 33
	case "INFO":
		color = 32
	case "DBUG":
		color = 36
	case "TRCE":
		color = 34
	default:
		return lvl
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", color, lvl)
}

func builtinReplaceJSON(groups []string, attr slog.Attr) slog.Attr {
	return builtinReplace(groups, attr, false)
}

func builtinReplace(_ []string, attr slog.Attr, text bool) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		if attr.Value.Kind() == slog.KindTime {
			if text {
				return slog.String("t", attr.Value.Time().Format(timeFormat))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String("lvl", LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case time.Time:
		if text {
			attr = slog.String(attr.Key, v.Format(timeFormat))
		}
	case *big.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.String())
		}
	case *uint256.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.Dec())
		}
	case fmt.Stringer:
		if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.String())
		}
	}
	return attr
}
