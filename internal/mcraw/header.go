package mcraw

import (
	"encoding/binary"
	"encoding/json"
)

const (
	magic           = "MCRAW"
	fixedHeaderSize = 15 // 5-byte magic + u32 offset + u32 size + 2 reserved bytes
	braceScanLimit  = 50 * 1024 * 1024
)

// locateMetadata finds the JSON metadata document within data, trying the
// fixed 15-byte header first and falling back to a brace-balance scan.
// It returns the JSON slice and the offset immediately following it
// (where the block payload begins).
func locateMetadata(data []byte) (jsonBytes []byte, payloadStart int, err error) {
	if b, end, ok := locateMetadataFixedHeader(data); ok {
		return b, end, nil
	}
	if b, end, ok := locateMetadataBraceScan(data); ok {
		return b, end, nil
	}
	return nil, 0, ErrContainerInvalid
}

func locateMetadataFixedHeader(data []byte) ([]byte, int, bool) {
	if len(data) < fixedHeaderSize || string(data[:len(magic)]) != magic {
		return nil, 0, false
	}
	offset := binary.LittleEndian.Uint32(data[5:9])
	size := binary.LittleEndian.Uint32(data[9:13])
	start := int(offset)
	end := start + int(size)
	if start < 0 || end < start || end > len(data) {
		return nil, 0, false
	}
	candidate := data[start:end]
	if !json.Valid(candidate) {
		return nil, 0, false
	}
	return candidate, end, true
}

func locateMetadataBraceScan(data []byte) ([]byte, int, bool) {
	limit := len(data)
	if limit > braceScanLimit {
		limit = braceScanLimit
	}
	window := data[:limit]

	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, b := range window {
		if start == -1 {
			if b == '{' {
				start = i
				depth = 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := window[start : i+1]
				if json.Valid(candidate) {
					return candidate, i + 1, true
				}
				start = -1
			}
		}
	}
	return nil, 0, false
}
