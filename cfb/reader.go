package cfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
)

var (
	ErrFormat   = errors.New("cfb: not a compound file")
	ErrCorrupt  = errors.New("cfb: corrupt structure")
	ErrNotFound = errors.New("cfb: no such stream")
)

// Entry describes one directory entry of an opened file.
type Entry struct {
	ID          int
	Path        string
	Type        byte
	StartSector uint32
	Size        uint64
	Left        uint32
	Right       uint32
	Child       uint32
}

// File is a compound file parsed from memory.
type File struct {
	data    []byte
	secSize int
	hdr     header
	fat     []uint32
	miniFAT []uint32
	dir     []dirEntry
	mini    []byte

	entries []Entry
	byPath  map[string]int
}

// Open parses the header, allocation tables and directory of data.
func Open(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
	}
	f := &File{data: data, byPath: make(map[string]int)}
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &f.hdr); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if f.hdr.Signature != signature {
		return nil, fmt.Errorf("%w: bad signature", ErrFormat)
	}
	if f.hdr.ByteOrder != byteOrder {
		return nil, fmt.Errorf("%w: byte order 0x%04x", ErrFormat, f.hdr.ByteOrder)
	}
	if f.hdr.SectorShift != 9 && f.hdr.SectorShift != 12 {
		return nil, fmt.Errorf("%w: sector shift %d", ErrFormat, f.hdr.SectorShift)
	}
	f.secSize = 1 << f.hdr.SectorShift

	if err := f.readFAT(); err != nil {
		return nil, err
	}
	if err := f.readDirectory(); err != nil {
		return nil, err
	}
	if err := f.readMini(); err != nil {
		return nil, err
	}
	f.walk(f.dir[0].Child, "", make(map[uint32]bool))
	return f, nil
}

func (f *File) sector(id uint32) ([]byte, error) {
	if id > MaxRegSect {
		return nil, fmt.Errorf("%w: sector id 0x%08x", ErrCorrupt, id)
	}
	off := (int(id) + 1) * f.secSize
	if off+f.secSize > len(f.data) {
		return nil, fmt.Errorf("%w: sector %d beyond end of file", ErrCorrupt, id)
	}
	return f.data[off : off+f.secSize], nil
}

func (f *File) readFAT() error {
	n := int(f.hdr.NumFATSectors)
	var fatSecs []uint32
	for i := 0; i < n && i < headerDIFAT; i++ {
		fatSecs = append(fatSecs, f.hdr.DIFAT[i])
	}

	perDIFAT := f.secSize/4 - 1
	next := f.hdr.FirstDIFATSector
	for i := uint32(0); i < f.hdr.NumDIFATSectors && len(fatSecs) < n; i++ {
		sec, err := f.sector(next)
		if err != nil {
			return fmt.Errorf("failed to read DIFAT sector: %w", err)
		}
		for j := 0; j < perDIFAT && len(fatSecs) < n; j++ {
			fatSecs = append(fatSecs, binary.LittleEndian.Uint32(sec[j*4:]))
		}
		next = binary.LittleEndian.Uint32(sec[perDIFAT*4:])
	}
	if len(fatSecs) != n {
		return fmt.Errorf("%w: found %d of %d FAT sectors", ErrCorrupt, len(fatSecs), n)
	}

	for _, id := range fatSecs {
		sec, err := f.sector(id)
		if err != nil {
			return fmt.Errorf("failed to read FAT sector: %w", err)
		}
		f.fat = append(f.fat, decodeTable(sec)...)
	}
	return nil
}

// chain follows table from start until ENDOFCHAIN.
func chain(table []uint32, start uint32) ([]uint32, error) {
	var ids []uint32
	for id := start; id != EndOfChain; id = table[id] {
		if int(id) >= len(table) {
			return nil, fmt.Errorf("%w: chain leaves table at 0x%08x", ErrCorrupt, id)
		}
		if len(ids) >= len(table) {
			return nil, fmt.Errorf("%w: chain from %d loops", ErrCorrupt, start)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *File) readChain(start uint32) ([]byte, error) {
	ids, err := chain(f.fat, start)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(ids)*f.secSize)
	for _, id := range ids {
		sec, err := f.sector(id)
		if err != nil {
			return nil, err
		}
		out = append(out, sec...)
	}
	return out, nil
}

func (f *File) readDirectory() error {
	raw, err := f.readChain(f.hdr.FirstDirSector)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}
	r := bytes.NewReader(raw)
	for r.Len() >= dirEntrySize {
		var de dirEntry
		if err := binary.Read(r, binary.LittleEndian, &de); err != nil {
			return fmt.Errorf("failed to read directory entry: %w", err)
		}
		f.dir = append(f.dir, de)
	}
	if len(f.dir) == 0 || f.dir[0].ObjectType != TypeRoot {
		return fmt.Errorf("%w: first directory entry is not the root", ErrCorrupt)
	}
	return nil
}

func (f *File) readMini() error {
	if f.hdr.NumMiniFATSectors > 0 {
		raw, err := f.readChain(f.hdr.FirstMiniFATSector)
		if err != nil {
			return fmt.Errorf("failed to read mini FAT: %w", err)
		}
		f.miniFAT = decodeTable(raw)
	}
	root := f.dir[0]
	if root.Size == 0 {
		return nil
	}
	raw, err := f.readChain(root.StartSector)
	if err != nil {
		return fmt.Errorf("failed to read mini stream: %w", err)
	}
	if uint64(len(raw)) < root.Size {
		return fmt.Errorf("%w: mini stream shorter than %d bytes", ErrCorrupt, root.Size)
	}
	f.mini = raw[:root.Size]
	return nil
}

// walk visits the sibling tree rooted at id in order, descending into
// storages.
func (f *File) walk(id uint32, prefix string, seen map[uint32]bool) {
	if id == NoStream || int(id) >= len(f.dir) || seen[id] {
		return
	}
	seen[id] = true
	de := f.dir[id]

	f.walk(de.Left, prefix, seen)

	path := prefix + de.name()
	f.entries = append(f.entries, Entry{
		ID:          int(id),
		Path:        path,
		Type:        de.ObjectType,
		StartSector: de.StartSector,
		Size:        de.Size,
		Left:        de.Left,
		Right:       de.Right,
		Child:       de.Child,
	})
	f.byPath[strings.ToUpper(path)] = int(id)
	if de.ObjectType == TypeStorage {
		f.walk(de.Child, path+"/", seen)
	}

	f.walk(de.Right, prefix, seen)
}

func (de dirEntry) name() string {
	n := int(de.NameByteLen)/2 - 1
	if n < 0 {
		n = 0
	}
	if n > len(de.Name) {
		n = len(de.Name)
	}
	return string(utf16.Decode(de.Name[:n]))
}

// Entries returns every storage and stream reachable from the root, in
// directory order.
func (f *File) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}

// Streams returns the paths of all streams.
func (f *File) Streams() []string {
	var out []string
	for _, e := range f.entries {
		if e.Type == TypeStream {
			out = append(out, e.Path)
		}
	}
	return out
}

// NumSectors is the number of sectors following the header.
func (f *File) NumSectors() int {
	return (len(f.data) - f.secSize) / f.secSize
}

func (f *File) lookup(path string) (dirEntry, error) {
	id, ok := f.byPath[strings.ToUpper(path)]
	if !ok || f.dir[id].ObjectType != TypeStream {
		return dirEntry{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	return f.dir[id], nil
}

// Chain returns the sector chain of a stream. mini reports whether the IDs
// index the mini stream.
func (f *File) Chain(path string) (ids []uint32, mini bool, err error) {
	de, err := f.lookup(path)
	if err != nil {
		return nil, false, err
	}
	if de.Size == 0 {
		return nil, false, nil
	}
	if de.Size < uint64(f.hdr.MiniStreamCutoff) {
		ids, err = chain(f.miniFAT, de.StartSector)
		return ids, true, err
	}
	ids, err = chain(f.fat, de.StartSector)
	return ids, false, err
}

// ReadStream returns the contents of the stream at path.
func (f *File) ReadStream(path string) ([]byte, error) {
	de, err := f.lookup(path)
	if err != nil {
		return nil, err
	}
	if de.Size == 0 {
		return []byte{}, nil
	}

	if de.Size >= uint64(f.hdr.MiniStreamCutoff) {
		raw, err := f.readChain(de.StartSector)
		if err != nil {
			return nil, fmt.Errorf("failed to read stream %q: %w", path, err)
		}
		if uint64(len(raw)) < de.Size {
			return nil, fmt.Errorf("%w: stream %q truncated", ErrCorrupt, path)
		}
		return raw[:de.Size], nil
	}

	ids, err := chain(f.miniFAT, de.StartSector)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %q: %w", path, err)
	}
	out := make([]byte, 0, len(ids)*miniSectorSize)
	for _, id := range ids {
		off := int(id) * miniSectorSize
		if off+miniSectorSize > len(f.mini) {
			return nil, fmt.Errorf("%w: mini sector %d beyond mini stream", ErrCorrupt, id)
		}
		out = append(out, f.mini[off:off+miniSectorSize]...)
	}
	if uint64(len(out)) < de.Size {
		return nil, fmt.Errorf("%w: stream %q truncated", ErrCorrupt, path)
	}
	return out[:de.Size], nil
}

func decodeTable(raw []byte) []uint32 {
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out
}
