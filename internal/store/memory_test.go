package store_test

import (
	"testing"

	"github.com/nick-dorsch/tasklist/internal/store"
	"github.com/nick-dorsch/tasklist/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.TaskStore {
		return store.NewMemory()
	})
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Buy milk", "Buy milk"},
		{"  trim me  ", "trim me"},
		{"\tline one\nline two\n", "line one\nline two"},
	}
	for _, tt := range tests {
		if got := store.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
