package slogx

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{name: "error", attr: Error(errors.New("boom")), key: "error", want: "boom"},
		{name: "nil error", attr: Error(nil), key: "error", want: "<nil>"},
		{name: "stringer", attr: Stringer("run_id", id), key: "run_id", want: id.String()},
		{name: "provider", attr: Provider("math"), key: "provider", want: "math"},
		{name: "capability", attr: Capability("add"), key: "capability", want: "add"},
		{name: "attempt", attr: Attempt(2), key: "attempt", want: "2"},
		{name: "delay", attr: Delay(time.Second), key: "delay", want: "1s"},
		{name: "depth", attr: Depth(3), key: "depth", want: "3"},
		{name: "logger", attr: LoggerName("retry"), key: KeyLoggerName, want: "retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.String())
		})
	}
}
