package mcraw

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

var decoderOnce sync.Once
var decoder *zstd.Decoder

func sharedDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		d, err := zstd.NewReader(nil)
		if err != nil {
			panic(err) // zstd.NewReader(nil) only fails on invalid options, never at runtime
		}
		decoder = d
	})
	return decoder
}

// Decompress expands a zstd-framed frame payload. The decoder is shared
// across calls (zstd.Decoder is safe for concurrent DecodeAll use) to
// avoid paying its window-table allocation per frame.
func Decompress(payload []byte) ([]byte, error) {
	out, err := sharedDecoder().DecodeAll(payload, nil)
	if err != nil {
		return nil, ErrDecompressionFailed
	}
	return out, nil
}
