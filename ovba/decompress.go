package ovba

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrSignature   = errors.New("ovba: missing signature byte")
	ErrChunkHeader = errors.New("ovba: invalid chunk header")
	ErrCopyToken   = errors.New("ovba: copy token references data before chunk start")
	ErrTruncated   = errors.New("ovba: truncated container")
)

// Decompress decodes a CompressedContainer produced by Compress or by an
// Office application.
func Decompress(src []byte) ([]byte, error) {
	if len(src) == 0 || src[0] != signatureByte {
		return nil, ErrSignature
	}

	var out []byte
	for p := 1; p < len(src); {
		if p+2 > len(src) {
			return nil, fmt.Errorf("%w: chunk header at offset %d", ErrTruncated, p)
		}
		hdr := binary.LittleEndian.Uint16(src[p:])
		if hdr&0x7000 != headerSignature {
			return nil, fmt.Errorf("%w: 0x%04x at offset %d", ErrChunkHeader, hdr, p)
		}
		end := p + int(hdr&0x0FFF) + 3
		if end > len(src) {
			return nil, fmt.Errorf("%w: chunk at offset %d needs %d bytes", ErrTruncated, p, end-p)
		}
		data := src[p+2 : end]
		p = end

		if hdr&headerCompressed == 0 {
			if len(data) != chunkSize {
				return nil, fmt.Errorf("%w: raw chunk of %d bytes", ErrChunkHeader, len(data))
			}
			out = append(out, data...)
			continue
		}

		var err error
		out, err = decompressChunk(out, data)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decompressChunk(out, data []byte) ([]byte, error) {
	start := len(out)
	for i := 0; i < len(data); {
		flags := data[i]
		i++
		for bit := 0; bit < 8 && i < len(data); bit++ {
			if flags&(1<<bit) == 0 {
				out = append(out, data[i])
				i++
				continue
			}
			if i+2 > len(data) {
				return nil, fmt.Errorf("%w: copy token", ErrTruncated)
			}
			token := binary.LittleEndian.Uint16(data[i:])
			i += 2

			offset, length := unpackCopyToken(len(out)-start, token)
			if offset > len(out)-start {
				return nil, fmt.Errorf("%w: offset %d at position %d", ErrCopyToken, offset, len(out)-start)
			}
			from := len(out) - offset
			for k := 0; k < length; k++ {
				out = append(out, out[from+k])
			}
		}
	}
	return out, nil
}
