package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressionType defines the compression applied to an archive stream
type CompressionType int

const (
	// NoCompression writes a plain tar stream
	NoCompression CompressionType = iota
	// ZstdCompression wraps the tar stream in Zstandard
	ZstdCompression
)

// DefaultCompression is used when none is configured
var DefaultCompression = ZstdCompression

func (c CompressionType) String() string {
	switch c {
	case NoCompression:
		return "none"
	case ZstdCompression:
		return "zstd"
	default:
		return fmt.Sprintf("CompressionType(%d)", int(c))
	}
}

// Extension is the conventional file suffix for archives of this type
func (c CompressionType) Extension() string {
	if c == ZstdCompression {
		return ".tar.zst"
	}
	return ".tar"
}

// ParseCompression accepts "none" or "zstd"
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zstd", "zst":
		return ZstdCompression, nil
	case "none", "off", "tar":
		return NoCompression, nil
	}
	return NoCompression, fmt.Errorf("unknown compression %q", s)
}

// DetectCompression guesses the compression from a file name
func DetectCompression(name string) CompressionType {
	if strings.HasSuffix(name, ".zst") || strings.HasSuffix(name, ".zstd") {
		return ZstdCompression
	}
	return NoCompression
}

// newCompressedWriter returns a writer that compresses data before writing.
// The returned closer flushes the compressor and must be called before the
// underlying writer is closed.
func newCompressedWriter(w io.Writer, compressionType CompressionType) (io.Writer, func() error, error) {
	if compressionType == NoCompression {
		return w, func() error { return nil }, nil
	}
	encoder, err := zstd.NewWriter(w)
	if err != nil {
		return nil, nil, err
	}
	return encoder, encoder.Close, nil
}

// newCompressedReader returns a reader that decompresses data after reading
func newCompressedReader(r io.Reader, compressionType CompressionType) (io.Reader, func(), error) {
	if compressionType == NoCompression {
		return r, func() {}, nil
	}
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, err
	}
	return decoder, decoder.Close, nil
}
