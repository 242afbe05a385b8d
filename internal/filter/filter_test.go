package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Rule
	}{
		{
			name: "empty spec",
			raw:  "",
			want: nil,
		},
		{
			name: "single include",
			raw:  "TCP",
			want: []Rule{{Pattern: "TCP"}},
		},
		{
			name: "include and exclude",
			raw:  "TCP;!192.168.1.1",
			want: []Rule{{Pattern: "TCP"}, {Pattern: "192.168.1.1", Exclude: true}},
		},
		{
			name: "whitespace and empty fragments",
			raw:  " tcp ; ! udp ; ; ",
			want: []Rule{{Pattern: "tcp"}, {Pattern: "udp", Exclude: true}},
		},
		{
			name: "bare bang is dropped",
			raw:  "!",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSpec(tt.raw))
		})
	}
}

func TestShouldDisplay(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		rules []Rule
		want  bool
	}{
		{
			name: "no rules displays everything",
			text: "[0] IPv4 UDP | LEN: 60",
			want: true,
		},
		{
			name:  "exclude matches case-insensitively",
			text:  "[0] IPv4 UDP | LEN: 60",
			rules: []Rule{{Pattern: "udp", Exclude: true}},
			want:  false,
		},
		{
			name:  "exclude misses",
			text:  "[0] IPv4 TCP | LEN: 60",
			rules: []Rule{{Pattern: "udp", Exclude: true}},
			want:  true,
		},
		{
			name:  "exclude wins over include",
			text:  "[0] tcp and udp",
			rules: []Rule{{Pattern: "tcp"}, {Pattern: "udp", Exclude: true}},
			want:  false,
		},
		{
			name:  "include matches",
			text:  "[0] tcp only",
			rules: []Rule{{Pattern: "tcp"}, {Pattern: "udp", Exclude: true}},
			want:  true,
		},
		{
			name:  "include present but none match",
			text:  "[0] neither protocol",
			rules: []Rule{{Pattern: "tcp"}, {Pattern: "udp", Exclude: true}},
			want:  false,
		},
		{
			name:  "exclude-only set acts as deny list",
			text:  "[0] IPv4 TCP | LEN: 60",
			rules: []Rule{{Pattern: "192.168.1.1", Exclude: true}},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldDisplay(tt.text, tt.rules))
		})
	}
}
