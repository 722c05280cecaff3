// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/compute/compute"
)

func withRoot(t *testing.T, l Logger) {
	prev := Root()
	SetDefault(l)
	t.Cleanup(func() { SetDefault(prev) })
}

func TestJSONHandlerValues(t *testing.T) {
	var buf bytes.Buffer
	withRoot(t, NewLogger(JSONHandlerWithLevel(&buf, LevelTrace)))

	Info("paid", "amount", big.NewInt(1000), "fee", uint256.NewInt(7), "to", compute.Address{1}, "nil", (*big.Int)(nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "INFO", rec["lvl"])
	assert.Equal(t, "paid", rec["msg"])
	assert.Equal(t, "1000", rec["amount"])
	assert.Equal(t, "7", rec["fee"])
	assert.Equal(t, compute.Address{1}.String(), rec["to"])
	assert.Equal(t, "<nil>", rec["nil"])
}

func TestWithContextFollowsRoot(t *testing.T) {
	pkgLogger := WithContext("pkg", "engine")

	var buf bytes.Buffer
	withRoot(t, NewLogger(JSONHandlerWithLevel(&buf, LevelInfo)))

	pkgLogger.Debug("hidden")
	assert.Zero(t, buf.Len())

	pkgLogger.With("task", "t1").Info("shown")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "engine", rec["pkg"])
	assert.Equal(t, "t1", rec["task"])
	assert.False(t, pkgLogger.Enabled(LevelDebug))
	assert.True(t, pkgLogger.Enabled(LevelWarn))
}

func TestTerminalHandler(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(TerminalHandlerWithLevel(&buf, LevelTrace, false))
	l.Trace("tick", "n", 1)
	assert.Contains(t, buf.String(), "lvl=TRCE")
	assert.Contains(t, buf.String(), "msg=tick")

	// a plain buffer is not a terminal
	var lvl slog.LevelVar
	_, isJSON := NewHandler(&buf, &lvl).(*slog.JSONHandler)
	assert.True(t, isJSON)
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, "EROR", LevelString(FromLegacyLevel(1)))
}
