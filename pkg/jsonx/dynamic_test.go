package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMap(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    map[string]any
		wantErr bool
	}{
		{
			name: "simple struct",
			input: struct {
				Name string `json:"name"`
				Age  int    `json:"age"`
			}{Name: "test", Age: 30},
			want: map[string]any{"name": "test", "age": float64(30)},
		},
		{
			name:  "nested map",
			input: map[string]any{"properties": map[string]string{"a": "number"}},
			want:  map[string]any{"properties": map[string]any{"a": "number"}},
		},
		{name: "array", input: []int{1, 2}, wantErr: true},
		{name: "unencodable", input: make(chan int), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMap(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
