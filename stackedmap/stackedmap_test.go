// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/compute/stackedmap"
)

func newMap(src map[string]string) *stackedmap.StackedMap[string, string] {
	return stackedmap.New(func(key string) (string, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})
}

func TestStackedMap(t *testing.T) {
	sm := newMap(map[string]string{"foo": "bar"})
	sm.Push()

	get := func(key string) []any {
		v, ok, err := sm.Get(key)
		return []any{v, ok, err}
	}

	tests := []struct {
		f        func()
		depth    int
		putKey   string
		putValue string
		getKey   string
		want     []any
	}{
		{func() {}, 1, "", "", "foo", []any{"bar", true, nil}},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", []any{"baz", true, nil}},
		{func() {}, 2, "foo", "baz1", "foo", []any{"baz1", true, nil}},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", []any{"qux", true, nil}},
		{func() { sm.Pop() }, 2, "", "", "foo", []any{"baz1", true, nil}},
		{func() { sm.Pop() }, 1, "", "", "foo", []any{"bar", true, nil}},
		{func() {}, 1, "", "", "none", []any{"", false, nil}},
		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, tt := range tests {
		tt.f()
		assert.Equal(t, tt.depth, sm.Depth())
		if tt.putKey != "" {
			sm.Put(tt.putKey, tt.putValue)
		}
		if tt.getKey != "" {
			assert.Equal(t, tt.want, get(tt.getKey))
		}
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := newMap(nil)

	puts := [][2]string{{"a", "b"}, {"a", "c"}, {"a1", "b1"}, {"a2", "b2"}}
	for _, kv := range puts {
		sm.Push()
		sm.Put(kv[0], kv[1])
	}

	var journal [][2]string
	sm.Journal(func(k, v string) bool {
		journal = append(journal, [2]string{k, v})
		return true
	})
	assert.Equal(t, puts, journal)

	sm.PopTo(2)
	journal = nil
	sm.Journal(func(k, v string) bool {
		journal = append(journal, [2]string{k, v})
		return true
	})
	assert.Equal(t, puts[:2], journal)

	v, _, _ := sm.Get("a")
	assert.Equal(t, "c", v)
	_, ok, _ := sm.Get("a1")
	assert.False(t, ok)
}
