package cfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
)

var (
	ErrNoStreams         = errors.New("cfb: no streams")
	ErrDuplicatePath     = errors.New("cfb: duplicate path")
	ErrPathConflict      = errors.New("cfb: path used as both stream and storage")
	ErrInvalidName       = errors.New("cfb: invalid entry name")
	ErrTooManyFATSectors = errors.New("cfb: FAT exceeds header DIFAT capacity")
)

// Stream is a named byte payload. Slashes in Path separate storages; the
// last segment names the stream itself.
type Stream struct {
	Path string
	Data []byte
}

type node struct {
	name     string
	typ      byte
	data     []byte
	children []int

	left, right, child uint32
	start              uint32
	size               uint64
}

// Build lays out streams as a version 3 compound file. The output is fully
// determined by the input: entry IDs follow the order of first appearance
// and all timestamps are zero.
func Build(streams []Stream) ([]byte, error) {
	if len(streams) == 0 {
		return nil, ErrNoStreams
	}

	nodes, err := buildTree(streams)
	if err != nil {
		return nil, err
	}
	linkSiblings(nodes)

	// ---- mini stream packing ----
	var mini []byte
	var miniFAT []uint32
	for _, n := range nodes {
		if n.typ != TypeStream {
			continue
		}
		n.size = uint64(len(n.data))
		if len(n.data) == 0 {
			n.start = EndOfChain
			continue
		}
		if len(n.data) >= miniCutoff {
			continue
		}
		n.start = uint32(len(miniFAT))
		count := ceilDiv(len(n.data), miniSectorSize)
		miniFAT = appendChain(miniFAT, n.start, count)
		mini = append(mini, n.data...)
		mini = append(mini, make([]byte, count*miniSectorSize-len(n.data))...)
	}

	// ---- sector allocation ----
	// Order: mini stream, large streams, directory, mini FAT, FAT.
	var next uint32
	alloc := func(count int) uint32 {
		start := next
		next += uint32(count)
		return start
	}

	root := nodes[0]
	root.start, root.size = EndOfChain, uint64(len(mini))
	miniStreamSecs := ceilDiv(len(mini), sectorSize)
	if miniStreamSecs > 0 {
		root.start = alloc(miniStreamSecs)
	}

	var large []*node
	for _, n := range nodes {
		if n.typ == TypeStream && len(n.data) >= miniCutoff {
			n.start = alloc(ceilDiv(len(n.data), sectorSize))
			large = append(large, n)
		}
	}

	dirSecs := ceilDiv(len(nodes), entriesPerSector)
	dirStart := alloc(dirSecs)

	miniFATSecs := ceilDiv(len(miniFAT), fatEntriesPerSec)
	miniFATStart := EndOfChain
	if miniFATSecs > 0 {
		miniFATStart = alloc(miniFATSecs)
	}

	fatSecs := fatSectorCount(int(next))
	if fatSecs > headerDIFAT {
		return nil, fmt.Errorf("%w: need %d FAT sectors, header holds %d", ErrTooManyFATSectors, fatSecs, headerDIFAT)
	}
	fatStart := alloc(fatSecs)
	total := int(next)

	// ---- chain linking ----
	fat := make([]uint32, 0, fatSecs*fatEntriesPerSec)
	if miniStreamSecs > 0 {
		fat = appendChain(fat, root.start, miniStreamSecs)
	}
	for _, n := range large {
		fat = appendChain(fat, n.start, ceilDiv(len(n.data), sectorSize))
	}
	fat = appendChain(fat, dirStart, dirSecs)
	if miniFATSecs > 0 {
		fat = appendChain(fat, miniFATStart, miniFATSecs)
	}
	for i := 0; i < fatSecs; i++ {
		fat = append(fat, FatSect)
	}
	fat = padSector(fat)

	// ---- header ----
	hdr := header{
		Signature:          signature,
		MinorVersion:       minorVersion,
		MajorVersion:       majorVersion,
		ByteOrder:          byteOrder,
		SectorShift:        sectorShift,
		MiniSectorShift:    miniSectorShift,
		NumFATSectors:      uint32(fatSecs),
		FirstDirSector:     dirStart,
		MiniStreamCutoff:   miniCutoff,
		FirstMiniFATSector: miniFATStart,
		NumMiniFATSectors:  uint32(miniFATSecs),
		FirstDIFATSector:   EndOfChain,
	}
	for i := range hdr.DIFAT {
		hdr.DIFAT[i] = FreeSect
		if i < fatSecs {
			hdr.DIFAT[i] = fatStart + uint32(i)
		}
	}

	// ---- serialisation ----
	buf := bytes.NewBuffer(make([]byte, 0, headerSize+total*sectorSize))
	if err := binary.Write(buf, binary.LittleEndian, &hdr); err != nil {
		return nil, err
	}
	writePadded(buf, mini)
	for _, n := range large {
		writePadded(buf, n.data)
	}
	for i := 0; i < dirSecs*entriesPerSector; i++ {
		var de dirEntry
		if i < len(nodes) {
			de = nodes[i].entry()
		} else {
			de = emptyEntry()
		}
		if err := binary.Write(buf, binary.LittleEndian, &de); err != nil {
			return nil, err
		}
	}
	if miniFATSecs > 0 {
		if err := binary.Write(buf, binary.LittleEndian, padSector(miniFAT)); err != nil {
			return nil, err
		}
	}
	if err := binary.Write(buf, binary.LittleEndian, fat); err != nil {
		return nil, err
	}

	if buf.Len() != headerSize+total*sectorSize {
		return nil, fmt.Errorf("cfb: wrote %d bytes, expected %d", buf.Len(), headerSize+total*sectorSize)
	}
	return buf.Bytes(), nil
}

// buildTree creates the root entry followed by storages and streams in the
// order they first appear in streams.
func buildTree(streams []Stream) ([]*node, error) {
	nodes := []*node{{name: rootName, typ: TypeRoot}}
	storages := map[string]int{"": 0}
	files := make(map[string]bool)

	for _, s := range streams {
		parts := strings.Split(s.Path, "/")
		for _, p := range parts {
			if err := validateName(p); err != nil {
				return nil, fmt.Errorf("%w in path %q", err, s.Path)
			}
		}

		parent := 0
		for i, p := range parts[:len(parts)-1] {
			key := strings.ToUpper(strings.Join(parts[:i+1], "/"))
			if files[key] {
				return nil, fmt.Errorf("%w: %q", ErrPathConflict, strings.Join(parts[:i+1], "/"))
			}
			id, ok := storages[key]
			if !ok {
				id = len(nodes)
				nodes = append(nodes, &node{name: p, typ: TypeStorage})
				nodes[parent].children = append(nodes[parent].children, id)
				storages[key] = id
			}
			parent = id
		}

		key := strings.ToUpper(s.Path)
		if files[key] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePath, s.Path)
		}
		if _, ok := storages[key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrPathConflict, s.Path)
		}
		files[key] = true

		id := len(nodes)
		nodes = append(nodes, &node{name: parts[len(parts)-1], typ: TypeStream, data: s.Data})
		nodes[parent].children = append(nodes[parent].children, id)
	}
	return nodes, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if n := len(utf16.Encode([]rune(name))); n > maxNameLen {
		return fmt.Errorf("%w: %q is %d UTF-16 units, max %d", ErrInvalidName, name, n, maxNameLen)
	}
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '!':
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, r)
		}
	}
	return nil
}

// linkSiblings hangs each storage's children off a single right-sibling
// chain. The chain is not balanced; it is sorted by directory name order so
// readers that binary-search the tree still find every entry.
func linkSiblings(nodes []*node) {
	for _, n := range nodes {
		n.left, n.right, n.child = NoStream, NoStream, NoStream
	}
	for _, n := range nodes {
		if len(n.children) == 0 {
			continue
		}
		order := append([]int(nil), n.children...)
		sort.SliceStable(order, func(i, j int) bool {
			return compareNames(nodes[order[i]].name, nodes[order[j]].name) < 0
		})
		n.child = uint32(order[0])
		for i := 0; i+1 < len(order); i++ {
			nodes[order[i]].right = uint32(order[i+1])
		}
	}
}

// compareNames orders directory names: shorter names first, then by
// upper-cased UTF-16 code units.
func compareNames(a, b string) int {
	ua := utf16.Encode([]rune(strings.ToUpper(a)))
	ub := utf16.Encode([]rune(strings.ToUpper(b)))
	if len(ua) != len(ub) {
		return len(ua) - len(ub)
	}
	for i := range ua {
		if ua[i] != ub[i] {
			return int(ua[i]) - int(ub[i])
		}
	}
	return 0
}

func (n *node) entry() dirEntry {
	de := dirEntry{
		ObjectType:  n.typ,
		Color:       colorBlack,
		Left:        n.left,
		Right:       n.right,
		Child:       n.child,
		StartSector: n.start,
		Size:        n.size,
	}
	name := utf16.Encode([]rune(n.name))
	copy(de.Name[:], name)
	de.NameByteLen = uint16((len(name) + 1) * 2)
	return de
}

func emptyEntry() dirEntry {
	return dirEntry{Left: NoStream, Right: NoStream, Child: NoStream}
}

// fatSectorCount returns the number of FAT sectors needed to describe
// sectors data sectors plus the FAT sectors themselves.
func fatSectorCount(sectors int) int {
	n := 0
	for {
		need := ceilDiv(sectors+n, fatEntriesPerSec)
		if need == n {
			return n
		}
		n = need
	}
}

// appendChain writes a contiguous chain of count sectors starting at start.
// Entries are appended at index start, so chains must be appended in
// allocation order.
func appendChain(table []uint32, start uint32, count int) []uint32 {
	for i := 1; i < count; i++ {
		table = append(table, start+uint32(i))
	}
	return append(table, EndOfChain)
}

func padSector(table []uint32) []uint32 {
	for len(table)%fatEntriesPerSec != 0 {
		table = append(table, FreeSect)
	}
	return table
}

func writePadded(buf *bytes.Buffer, data []byte) {
	buf.Write(data)
	if rem := len(data) % sectorSize; rem != 0 {
		buf.Write(make([]byte, sectorSize-rem))
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
