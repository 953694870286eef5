package scan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{"empty", nil, false},
		{"python", []byte("def f():\n\treturn 1\n"), false},
		{"utf8", []byte("def grüße():\n    return 'héllo'\n"), false},
		{"gzip", []byte{0x1F, 0x8B, 0x08, 0x00}, true},
		{"png", append([]byte{0x89, 0x50, 0x4E, 0x47}, []byte("rest")...), true},
		{"elf", []byte("\x7fELF\x02\x01\x01"), true},
		{"null bytes", []byte("abc\x00def"), true},
		{"control characters", bytes.Repeat([]byte{0x01, 0x02, 'a'}, 20), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinary(tt.content))
		})
	}
}

func TestIsBinary_OnlySamplesTheHead(t *testing.T) {
	content := append(bytes.Repeat([]byte("x = 1\n"), 200), 0x00, 0x00, 0x00)
	assert.False(t, IsBinary(content))
}
