package sevenzip

import "github.com/bodgit/sevenzip/internal/method"

// CoderInfo describes one node of a folder's coder graph: a method id, its
// input arity, and a reference to its properties blob.
type CoderInfo struct {
	Method method.ID

	// NumStreams is the coder's input arity: 1 for every codec, crypto
	// layer and filter, 4 for BCJ2.
	NumStreams int

	// Properties indexes into the folder's shared properties buffer.
	PropertiesOffset int
	PropertiesLength int
}

// Bond is a directed edge of the folder graph: coder InIndex consumes the
// output of coder OutIndex.
type Bond struct {
	InIndex  int
	OutIndex int
}

// Folder is the coder graph for one unit of solid compression: a set of
// coders wired by bonds, fed by one or more packed streams, producing one
// plaintext output.
//
// Expected invariants, not checked by this type: 1 ≤ len(Coders) ≤ 4;
// every coder input is attached by exactly one bond or fed by exactly
// one packed stream, never both; the graph is acyclic; UnpackStream
// names a coder output reachable from the packed leaves. The classifier
// accepts only the coder/bond/pack-stream layouts of shapes S1-S5 and
// does not look at UnpackStream.
type Folder struct {
	Coders []CoderInfo
	Bonds  []Bond

	// PackStreams[i] is the coder-input index fed by the i-th packed
	// stream of the archive.
	PackStreams []int

	// UnpackStream is the coder-output index producing the folder's
	// final plaintext.
	UnpackStream int

	// Properties is the folder's shared properties buffer; each coder's
	// CoderInfo indexes a sub-slice of it.
	Properties []byte

	// CRC32, when HasCRC is true, is the expected CRC-32 of the final
	// plaintext.
	CRC32  uint32
	HasCRC bool
}

// CoderProperties returns the properties slice for coder i.
func (f *Folder) CoderProperties(i int) []byte {
	c := f.Coders[i]

	return f.Properties[c.PropertiesOffset : c.PropertiesOffset+c.PropertiesLength]
}

// findBondByIn returns the bond whose InIndex is i, or nil.
func (f *Folder) findBondByIn(i int) *Bond {
	for k := range f.Bonds {
		if f.Bonds[k].InIndex == i {
			return &f.Bonds[k]
		}
	}

	return nil
}

// findBondByOut returns the bond whose OutIndex is i, or nil.
func (f *Folder) findBondByOut(i int) *Bond {
	for k := range f.Bonds {
		if f.Bonds[k].OutIndex == i {
			return &f.Bonds[k]
		}
	}

	return nil
}

// PackedLayout gives the packed-stream byte offsets and per-coder unpack
// sizes for one folder, relative to the archive's data region.
type PackedLayout struct {
	// PackPositions has len(PackStreams)+1 entries; PackPositions[k+1]
	// - PackPositions[k] is the size of the k-th packed stream.
	PackPositions []int64

	// UnpackSizes gives the post-decode size of each coder's output,
	// indexed by coder-output index (equal to coder index since every
	// coder in this model has exactly one output).
	UnpackSizes []int64
}

func (p *PackedLayout) packSize(i int) int64 {
	return p.PackPositions[i+1] - p.PackPositions[i]
}

// packStreamForInput returns the packed-stream index feeding coder-input
// index inputIndex, or false if no packed stream feeds it (it's fed by a
// bond instead).
func (f *Folder) packStreamForInput(inputIndex int) (int, bool) {
	for k, idx := range f.PackStreams {
		if idx == inputIndex {
			return k, true
		}
	}

	return 0, false
}
