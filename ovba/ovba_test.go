package ovba

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []byte{0x01}, Compress(nil))

	out, err := Decompress([]byte{0x01})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCompressLiteralOnly(t *testing.T) {
	t.Parallel()
	// MS-OVBA 3.2.1: no repeated runs, only literal tokens.
	got := Compress([]byte("abcdefghijklmnopqrstuv."))
	want := []byte{
		0x01, 0x19, 0xB0,
		0x00, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68,
		0x00, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F, 0x70,
		0x00, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x2E,
	}
	assert.Equal(t, want, got)
}

func TestCompressFirstCopyToken(t *testing.T) {
	t.Parallel()
	got := Compress([]byte("#aaabcdefaaaaghij"))
	// '#aaabcde' are literals; 'f' literal; 'aaa' copies from offset 8.
	require.GreaterOrEqual(t, len(got), 16)
	assert.Equal(t, []byte{0x00, 0x23, 0x61, 0x61, 0x61, 0x62, 0x63, 0x64, 0x65}, got[3:12])
	assert.Equal(t, byte(0x02), got[12]&0x03)
	assert.Equal(t, []byte{0x66, 0x00, 0x70}, got[13:16])
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	random := func(n int) []byte {
		b := make([]byte, n)
		rng.Read(b)
		return b
	}

	tests := []struct {
		name string
		in   []byte
	}{
		{"one byte", []byte{'x'}},
		{"two bytes", []byte("ab")},
		{"three equal", []byte("aaa")},
		{"long run", bytes.Repeat([]byte{'a'}, 10000)},
		{"text", []byte("#aaabcdefaaaaghijaaaaaklaaamnopqaaaaaaaaaaaarstuvwxyzaaa")},
		{"exact chunk", bytes.Repeat([]byte("Sub Foo()\r\nEnd Sub\r\n"), 4096/20+1)[:4096]},
		{"vba source", []byte(strings.Repeat("Attribute VB_Name = \"Mod1\"\r\nSub Test()\r\n    MsgBox \"Hello\"\r\nEnd Sub\r\n", 200))},
		{"random small", random(100)},
		{"random full chunk", random(4096)},
		{"random partial tail", random(4096 + 4000)},
		{"random several chunks", random(3*4096 + 17)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Decompress(Compress(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.in, out)
		})
	}
}

func TestIncompressibleChunkStoredRaw(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	in := make([]byte, 4096)
	rng.Read(in)

	got := Compress(in)
	require.Len(t, got, 1+2+4096)
	assert.Equal(t, uint16(0x3FFF), binary.LittleEndian.Uint16(got[1:]))
	assert.Equal(t, in, got[3:])
}

// chunkSizes returns the decompressed size of each chunk in a container.
func chunkSizes(t *testing.T, container []byte) []int {
	t.Helper()
	var sizes []int
	for p := 1; p < len(container); {
		require.LessOrEqual(t, p+2, len(container))
		n := int(binary.LittleEndian.Uint16(container[p:])&0x0FFF) + 3
		require.LessOrEqual(t, p+n, len(container))
		out, err := Decompress(append([]byte{signatureByte}, container[p:p+n]...))
		require.NoError(t, err)
		sizes = append(sizes, len(out))
		p += n
	}
	return sizes
}

func TestShortTailSplitsAcrossChunks(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	in := make([]byte, 3700)
	rng.Read(in)

	got := Compress(in)
	out, err := Decompress(got)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Literal tokens cost 9/8 bytes each, so incompressible input
	// under 4096 bytes overflows one chunk and spills into a second.
	sizes := chunkSizes(t, got)
	require.Len(t, sizes, 2)
	assert.Less(t, sizes[0], chunkSize)
	assert.Equal(t, len(in), sizes[0]+sizes[1])

	// Full chunks before the tail still decode to 4096 bytes.
	in = append(bytes.Repeat([]byte("Sub A()\r\nEnd Sub\r\n"), 4096/18+1)[:4096], in...)
	sizes = chunkSizes(t, Compress(in))
	require.Len(t, sizes, 3)
	assert.Equal(t, chunkSize, sizes[0])
}

func TestCompressRepetitiveShrinks(t *testing.T) {
	t.Parallel()
	in := bytes.Repeat([]byte("Dim ws As Worksheet\r\n"), 500)
	got := Compress(in)
	assert.Less(t, len(got), len(in)/4)

	// Every chunk header carries the 0b011 signature.
	for p := 1; p < len(got); {
		hdr := binary.LittleEndian.Uint16(got[p:])
		require.Equal(t, uint16(0x3000), hdr&0x7000)
		p += int(hdr&0x0FFF) + 3
	}
}

func TestCopyTokenBitCount(t *testing.T) {
	t.Parallel()
	tests := []struct {
		pos  int
		want uint
	}{
		{1, 4}, {16, 4}, {17, 5}, {32, 5}, {33, 6}, {2048, 11}, {2049, 12}, {4095, 12},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, copyTokenBitCount(tc.pos), "pos %d", tc.pos)
	}
}

func TestCopyTokenPacking(t *testing.T) {
	t.Parallel()
	for _, pos := range []int{3, 17, 100, 1000, 4000} {
		maxLen := maxCopyLength(pos)
		for _, c := range []struct{ offset, length int }{{1, 3}, {pos, 3}, {1, maxLen}, {pos, maxLen}} {
			off, n := unpackCopyToken(pos, packCopyToken(pos, c.offset, c.length))
			assert.Equal(t, c.offset, off)
			assert.Equal(t, c.length, n)
		}
	}
}

func TestDecompressErrors(t *testing.T) {
	t.Parallel()

	_, err := Decompress(nil)
	require.ErrorIs(t, err, ErrSignature)

	_, err = Decompress([]byte{0x02, 0x00})
	require.ErrorIs(t, err, ErrSignature)

	_, err = Decompress([]byte{0x01, 0x19})
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Decompress([]byte{0x01, 0x00, 0x80, 0x00})
	require.ErrorIs(t, err, ErrChunkHeader)

	// Copy token as the very first token has nothing to reference.
	_, err = Decompress([]byte{0x01, 0x02, 0xB0, 0x01, 0x00, 0x00})
	require.ErrorIs(t, err, ErrCopyToken)
}
