// Package method implements the closed method-id registry. Every coder in
// a folder graph carries one of these ids; anything else is Unsupported.
package method

// ID is a 7-zip method identifier, the big-endian byte string from the
// archive packed into a uint64.
type ID uint64

// The closed set of method ids this decoder recognises.
const (
	Copy      ID = 0x00
	Delta     ID = 0x03
	ARM64     ID = 0x0a
	RISCV     ID = 0x0b
	LZMA2     ID = 0x21
	LZMA      ID = 0x030101
	BCJ       ID = 0x03030103
	PPC       ID = 0x03030205
	IA64      ID = 0x03030401
	ARM       ID = 0x03030501
	ARMT      ID = 0x03030701
	SPARC     ID = 0x03030805
	BCJ2      ID = 0x0303011b
	Zstd      ID = 0x04f71101
	AES256SHA ID = 0x06f10701
	PPMd      ID = 0x030401
)

// Kind classifies what role a method id plays in a folder graph.
type Kind int

const (
	KindUnknown Kind = iota
	KindMain         // a decompressor: Copy, LZMA, LZMA2, Zstd, PPMd
	KindFilter       // a branch-conversion filter or Delta
	KindAES          // the AES-256+SHA-256 crypto layer
	KindBCJ2         // the four-input BCJ2 demultiplexer
)

// NumStreams is the input arity of a coder with this method id. Every
// coder has exactly one input stream except BCJ2, which has four.
func (id ID) NumStreams() int {
	if id == BCJ2 {
		return 4
	}

	return 1
}

func (id ID) Kind() Kind {
	switch id {
	case Copy, LZMA, LZMA2, Zstd, PPMd:
		return KindMain
	case Delta, BCJ, PPC, IA64, ARM, ARMT, SPARC, ARM64, RISCV:
		return KindFilter
	case AES256SHA:
		return KindAES
	case BCJ2:
		return KindBCJ2
	default:
		return KindUnknown
	}
}

// String returns a human-readable name, used in error messages.
func (id ID) String() string {
	switch id {
	case Copy:
		return "Copy"
	case Delta:
		return "Delta"
	case ARM64:
		return "ARM64"
	case RISCV:
		return "RISC-V"
	case LZMA2:
		return "LZMA2"
	case LZMA:
		return "LZMA"
	case BCJ:
		return "BCJ"
	case PPC:
		return "PPC"
	case IA64:
		return "IA64"
	case ARM:
		return "ARM"
	case ARMT:
		return "ARMT"
	case SPARC:
		return "SPARC"
	case BCJ2:
		return "BCJ2"
	case Zstd:
		return "Zstd"
	case AES256SHA:
		return "AES-256-SHA256"
	case PPMd:
		return "PPMd"
	default:
		return "unknown"
	}
}
