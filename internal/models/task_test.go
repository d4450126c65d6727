package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		allowed []Status
		want    Status
		wantOK  bool
	}{
		{name: "empty defaults to todo", raw: "", want: StatusTodo, wantOK: true},
		{name: "todo is default even when not first", raw: "  ", allowed: []Status{"BACKLOG", StatusTodo, StatusDone}, want: StatusTodo, wantOK: true},
		{name: "first allowed without todo", raw: "", allowed: []Status{"BACKLOG", StatusDone}, want: "BACKLOG", wantOK: true},
		{name: "case insensitive", raw: " in_progress ", want: StatusInProgress, wantOK: true},
		{name: "unknown status", raw: "BLOCKED", want: "BLOCKED", wantOK: false},
		{name: "not in configured set", raw: "TODO", allowed: []Status{"BACKLOG"}, want: StatusTodo, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStatus(tt.raw, tt.allowed)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
