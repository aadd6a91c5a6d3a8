// Package hexdump renders byte buffers as annotated hex lines, used by the
// CLI to show surviving scan elements in their surrounding memory.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"unicode"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options defines options for customizing the hexdump output
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// BaseAddress is the address of data[0], shown in the offset column
	BaseAddress uint64

	// HighlightStart and HighlightEnd mark a byte range of data to render
	// in the highlight color (end exclusive; equal means no highlight)
	HighlightStart int
	HighlightEnd   int

	// OffsetColor is the color for the address column
	OffsetColor coloransi.ColorCode

	// HexColor is the color for the hex values
	HexColor coloransi.ColorCode

	// HighlightColor is the color for the highlighted range
	HighlightColor coloransi.ColorCode

	// ZeroColor is the color for zero bytes (0x00)
	ZeroColor coloransi.ColorCode
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() Options {
	return Options{
		BytesPerLine:   16,
		OffsetColor:    coloransi.Cyan,
		HexColor:       coloransi.Green,
		HighlightColor: coloransi.Yellow,
		ZeroColor:      coloransi.BrightBlack,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		end := offset + options.BytesPerLine
		if end > len(data) {
			end = len(data)
		}

		fmt.Fprint(writer, coloransi.Foreground(options.OffsetColor,
			fmt.Sprintf("%012x  ", options.BaseAddress+uint64(offset))))

		for i := offset; i < offset+options.BytesPerLine; i++ {
			if i >= len(data) {
				fmt.Fprint(writer, "   ")
				continue
			}
			hexByte := fmt.Sprintf("%02x ", data[i])
			switch {
			case i >= options.HighlightStart && i < options.HighlightEnd:
				fmt.Fprint(writer, coloransi.Foreground(options.HighlightColor, hexByte))
			case data[i] == 0:
				fmt.Fprint(writer, coloransi.Foreground(options.ZeroColor, hexByte))
			default:
				fmt.Fprint(writer, coloransi.Foreground(options.HexColor, hexByte))
			}
		}

		fmt.Fprint(writer, " |")
		for i := offset; i < end; i++ {
			c := rune(data[i])
			if !unicode.IsPrint(c) || c > unicode.MaxASCII {
				c = '.'
			}
			fmt.Fprintf(writer, "%c", c)
		}
		fmt.Fprintln(writer, "|")
	}
}
