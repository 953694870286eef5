package scan

import (
	"bytes"
)

// sampleSize is how much of a file the binary heuristic inspects
const sampleSize = 512

var magicNumbers = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // ZIP
	{0x50, 0x4B, 0x05, 0x06}, // empty ZIP
	{0x89, 0x50, 0x4E, 0x47}, // PNG
	{0xFF, 0xD8, 0xFF},       // JPEG
	{0x25, 0x50, 0x44, 0x46}, // PDF
	{0x7F, 0x45, 0x4C, 0x46}, // ELF
	{0xCA, 0xFE, 0xBA, 0xBE}, // Mach-O, Java class
}

// IsBinary reports whether content looks like something other than source text.
// Tree-sitter would accept binary input and produce meaningless metrics.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	sample := content
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	for _, magic := range magicNumbers {
		if bytes.HasPrefix(sample, magic) {
			return true
		}
	}

	nullBytes := 0
	nonPrintable := 0
	for _, b := range sample {
		if b == 0 {
			nullBytes++
		}
		// bytes >= 0x80 are left alone so UTF-8 text is not penalised
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			nonPrintable++
		}
	}

	if nullBytes > len(sample)/100 {
		return true
	}
	return nonPrintable > len(sample)*30/100
}
