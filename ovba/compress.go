// Package ovba implements the run-length compression used for VBA project
// streams (MS-OVBA section 2.4.1).
package ovba

import "encoding/binary"

const (
	signatureByte = 0x01

	// chunkSize is the number of decompressed bytes covered by one chunk.
	chunkSize = 4096

	// maxChunkData is the largest payload a chunk header can describe.
	maxChunkData = 4096

	minMatch = 3

	headerSignature  = 0x3000
	headerCompressed = 0x8000
	rawChunkHeader   = headerSignature | 0x0FFF
)

// Compress encodes src as a CompressedContainer: the signature byte followed
// by one chunk per 4096 bytes of input. Empty input yields only the
// signature byte.
func Compress(src []byte) []byte {
	out := make([]byte, 0, len(src)/2+16)
	out = append(out, signatureByte)

	for pos := 0; pos < len(src); {
		end := pos + chunkSize
		if end > len(src) {
			end = len(src)
		}
		chunk := src[pos:end]
		data, consumed := compressChunk(chunk)

		if len(chunk) == chunkSize && (consumed < len(chunk) || len(data) >= chunkSize) {
			out = binary.LittleEndian.AppendUint16(out, rawChunkHeader)
			out = append(out, chunk...)
			pos = end
			continue
		}

		// A short trailing chunk cannot be stored raw because raw chunks
		// always decompress to 4096 bytes. If it does not fit, the remainder
		// starts another chunk, so a chunk other than the last may decode
		// to fewer than 4096 bytes. MS-OVBA 2.4.1.1.5 does not allow this;
		// it only happens for a near-incompressible tail, never VBA text.
		hdr := uint16(len(data)+2-3) | headerSignature | headerCompressed
		out = binary.LittleEndian.AppendUint16(out, hdr)
		out = append(out, data...)
		pos += consumed
	}
	return out
}

// compressChunk tokenizes chunk until it is exhausted or the next token
// would overflow the chunk payload. It returns the token sequences and the
// number of input bytes they cover.
func compressChunk(chunk []byte) ([]byte, int) {
	data := make([]byte, 0, maxChunkData)
	pos := 0
	for pos < len(chunk) {
		if len(data)+2 > maxChunkData {
			break
		}
		flagIdx := len(data)
		data = append(data, 0)
		var flags byte

		for bit := 0; bit < 8 && pos < len(chunk); bit++ {
			offset, length := longestMatch(chunk, pos)
			if length == 0 {
				if len(data)+1 > maxChunkData {
					break
				}
				data = append(data, chunk[pos])
				pos++
				continue
			}
			if len(data)+2 > maxChunkData {
				break
			}
			data = binary.LittleEndian.AppendUint16(data, packCopyToken(pos, offset, length))
			flags |= 1 << bit
			pos += length
		}

		if len(data) == flagIdx+1 {
			// Flag byte without tokens.
			data = data[:flagIdx]
			break
		}
		data[flagIdx] = flags
	}
	return data, pos
}

// longestMatch finds the longest earlier occurrence of the bytes at pos
// within chunk. Matches may overlap pos. Ties go to the nearest candidate.
func longestMatch(chunk []byte, pos int) (offset, length int) {
	if pos == 0 {
		return 0, 0
	}
	maxLen := maxCopyLength(pos)
	best, bestCandidate := 0, 0
	for c := pos - 1; c >= 0; c-- {
		n := 0
		for pos+n < len(chunk) && n < maxLen && chunk[c+n] == chunk[pos+n] {
			n++
		}
		if n > best {
			best, bestCandidate = n, c
			if n == maxLen {
				break
			}
		}
	}
	if best < minMatch {
		return 0, 0
	}
	return pos - bestCandidate, best
}

// copyTokenBitCount returns the number of offset bits a copy token uses when
// emitted at pos bytes into the decompressed chunk.
func copyTokenBitCount(pos int) uint {
	n := uint(4)
	for 1<<n < pos {
		n++
	}
	return n
}

func maxCopyLength(pos int) int {
	return int(uint16(0xFFFF)>>copyTokenBitCount(pos)) + 3
}

func packCopyToken(pos, offset, length int) uint16 {
	bitCount := copyTokenBitCount(pos)
	return uint16(offset-1)<<(16-bitCount) | uint16(length-minMatch)
}

func unpackCopyToken(pos int, token uint16) (offset, length int) {
	bitCount := copyTokenBitCount(pos)
	lengthMask := uint16(0xFFFF) >> bitCount
	length = int(token&lengthMask) + minMatch
	offset = int(token>>(16-bitCount)) + 1
	return offset, length
}
