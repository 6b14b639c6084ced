// Package cfb writes and reads Compound File Binary (OLE2) containers as
// described by MS-CFB, version 3 (512-byte sectors).
package cfb

const (
	headerSize      = 512
	sectorSize      = 512
	sectorShift     = 9
	miniSectorSize  = 64
	miniSectorShift = 6
	miniCutoff      = 4096
	dirEntrySize    = 128
	headerDIFAT     = 109

	entriesPerSector = sectorSize / dirEntrySize
	fatEntriesPerSec = sectorSize / 4

	minorVersion = 0x003E
	majorVersion = 0x0003
	byteOrder    = 0xFFFE

	maxNameLen = 31
	rootName   = "Root Entry"
)

// Sector sentinels.
const (
	MaxRegSect uint32 = 0xFFFFFFFA
	DifSect    uint32 = 0xFFFFFFFC
	FatSect    uint32 = 0xFFFFFFFD
	EndOfChain uint32 = 0xFFFFFFFE
	FreeSect   uint32 = 0xFFFFFFFF
	NoStream   uint32 = 0xFFFFFFFF
)

// Object types of directory entries.
const (
	TypeEmpty   byte = 0
	TypeStorage byte = 1
	TypeStream  byte = 2
	TypeRoot    byte = 5
)

const (
	colorRed   byte = 0
	colorBlack byte = 1
)

var signature = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// header mirrors the first 76 bytes of the file header plus the inline DIFAT.
type header struct {
	Signature          [8]byte
	CLSID              [16]byte
	MinorVersion       uint16
	MajorVersion       uint16
	ByteOrder          uint16
	SectorShift        uint16
	MiniSectorShift    uint16
	Reserved           [6]byte
	NumDirSectors      uint32
	NumFATSectors      uint32
	FirstDirSector     uint32
	TransactionSig     uint32
	MiniStreamCutoff   uint32
	FirstMiniFATSector uint32
	NumMiniFATSectors  uint32
	FirstDIFATSector   uint32
	NumDIFATSectors    uint32
	DIFAT              [headerDIFAT]uint32
}

// dirEntry is the on-disk 128-byte directory entry.
type dirEntry struct {
	Name        [32]uint16
	NameByteLen uint16
	ObjectType  byte
	Color       byte
	Left        uint32
	Right       uint32
	Child       uint32
	CLSID       [16]byte
	StateBits   uint32
	Created     uint64
	Modified    uint64
	StartSector uint32
	Size        uint64
}
