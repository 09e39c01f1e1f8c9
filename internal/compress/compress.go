// Payload compressors applied to rendered GELF messages before chunking
package compress

import (
	"bytes"
	"fmt"
	"strings"

	"gelfsend/pkg/gelf"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const (
	NameNone string = "none"
	NameGzip string = "gzip"
	NameZlib string = "zlib"
)

// Algorithm identified from leading bytes
type Kind int

const (
	KindUnknown Kind = iota
	KindGzip
	KindZlib
	KindChunked
)

// Returns a compressor for the named algorithm. "none" (or empty) returns nil.
// Level follows compress/flate conventions, 0 picks the library default.
func New(name string, level int) (compressor gelf.Compressor, err error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		err = fmt.Errorf("compression level %d out of range [%d, %d]", level, gzip.HuffmanOnly, gzip.BestCompression)
		return
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameNone:
		return
	case NameGzip:
		compressor = gzipCompressor{level: level}
	case NameZlib:
		compressor = zlibCompressor{level: level}
	default:
		err = fmt.Errorf("unknown compression algorithm '%s'", name)
	}
	return
}

type gzipCompressor struct {
	level int
}

func (c gzipCompressor) Compress(payload []byte) (out []byte, err error) {
	var buf bytes.Buffer
	buf.Grow(len(payload) / 2)

	writer, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		err = fmt.Errorf("failed to create gzip writer: %w", err)
		return
	}
	if _, err = writer.Write(payload); err != nil {
		err = fmt.Errorf("failed to write gzip stream: %w", err)
		return
	}
	if err = writer.Close(); err != nil {
		err = fmt.Errorf("failed to finish gzip stream: %w", err)
		return
	}
	out = buf.Bytes()
	return
}

type zlibCompressor struct {
	level int
}

func (c zlibCompressor) Compress(payload []byte) (out []byte, err error) {
	var buf bytes.Buffer
	buf.Grow(len(payload) / 2)

	writer, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		err = fmt.Errorf("failed to create zlib writer: %w", err)
		return
	}
	if _, err = writer.Write(payload); err != nil {
		err = fmt.Errorf("failed to write zlib stream: %w", err)
		return
	}
	if err = writer.Close(); err != nil {
		err = fmt.Errorf("failed to finish zlib stream: %w", err)
		return
	}
	out = buf.Bytes()
	return
}

// Identifies how a datagram payload is encoded from its magic bytes
func Detect(payload []byte) (kind Kind) {
	switch {
	case len(payload) >= 2 && payload[0] == 0x1e && payload[1] == 0x0f:
		kind = KindChunked
	case len(payload) >= 2 && payload[0] == 0x1f && payload[1] == 0x8b:
		kind = KindGzip
	case len(payload) >= 1 && payload[0] == 0x78:
		kind = KindZlib
	}
	return
}
