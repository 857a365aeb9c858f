package database

import (
	"testing"
	"time"
)

func TestRow_String(t *testing.T) {
	r := Row{
		"s":     "hello",
		"b":     []byte("bytes"),
		"i":     int64(42),
		"f":     1.5,
		"null":  nil,
		"other": true,
	}

	tests := []struct {
		col  string
		want *string
	}{
		{"s", ptr("hello")},
		{"b", ptr("bytes")},
		{"i", ptr("42")},
		{"f", ptr("1.5")},
		{"null", nil},
		{"missing", nil},
		{"other", nil},
	}

	for _, tt := range tests {
		got := r.String(tt.col)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("String(%q) = %v, want %v", tt.col, show(got), show(tt.want))
		}
	}
}

func TestRow_Int64(t *testing.T) {
	r := Row{"i": int64(7), "f": 3.0, "s": "12", "bad": "x", "null": nil, "t": true}

	tests := []struct {
		col  string
		want *int64
	}{
		{"i", ptr(int64(7))},
		{"f", ptr(int64(3))},
		{"s", ptr(int64(12))},
		{"t", ptr(int64(1))},
		{"bad", nil},
		{"null", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		got := r.Int64(tt.col)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("Int64(%q) = %v, want %v", tt.col, show(got), show(tt.want))
		}
	}
}

func TestRow_Float64(t *testing.T) {
	r := Row{
		"f":    725846400.25,
		"i":    int64(725846400),
		"s":    "1.25",
		"time": time.Unix(725846400, 500000000).UTC(),
		"null": nil,
	}

	tests := []struct {
		col  string
		want *float64
	}{
		{"f", ptr(725846400.25)},
		{"i", ptr(725846400.0)},
		{"s", ptr(1.25)},
		{"time", ptr(725846400.5)},
		{"null", nil},
		{"missing", nil},
	}

	for _, tt := range tests {
		got := r.Float64(tt.col)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("Float64(%q) = %v, want %v", tt.col, show(got), show(tt.want))
		}
	}
}

func TestRow_Bool(t *testing.T) {
	r := Row{"one": int64(1), "zero": int64(0), "b": true, "s": "true", "null": nil}

	tests := map[string]bool{
		"one":     true,
		"zero":    false,
		"b":       true,
		"s":       true,
		"null":    false,
		"missing": false,
	}

	for col, want := range tests {
		if got := r.Bool(col); got != want {
			t.Errorf("Bool(%q) = %v, want %v", col, got, want)
		}
	}
}

func TestReadOnlyDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/DayOne.sqlite", "file:/tmp/DayOne.sqlite?mode=ro"},
		{"/Users/me/Library/Group Containers/DayOne.sqlite", "file:/Users/me/Library/Group%20Containers/DayOne.sqlite?mode=ro"},
		{"/tmp/what?#.sqlite", "file:/tmp/what%3F%23.sqlite?mode=ro"},
	}

	for _, tt := range tests {
		if got := readOnlyDSN(tt.path); got != tt.want {
			t.Errorf("readOnlyDSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func show[T any](p *T) any {
	if p == nil {
		return "<nil>"
	}
	return *p
}
