// Package classify reduces an arbitrary folder coder graph to one of the
// five accepted pipeline shapes, per spec.md §4.5. Any other shape is
// rejected as Unsupported before a single pack byte is read.
package classify

import (
	"errors"

	"github.com/bodgit/sevenzip/internal/method"
)

// Shape is one of the five topologies the folder engine knows how to
// run.
type Shape int

const (
	ShapeUnsupported Shape = iota
	ShapeSingleMain        // S1
	ShapeAESOnly           // S2
	ShapeFilterMain        // S3
	ShapeAESMain           // S4
	ShapeBCJ2              // S5
)

func (s Shape) String() string {
	switch s {
	case ShapeSingleMain:
		return "single-main"
	case ShapeAESOnly:
		return "aes-only"
	case ShapeFilterMain:
		return "filter+main"
	case ShapeAESMain:
		return "aes+main"
	case ShapeBCJ2:
		return "bcj2"
	default:
		return "unsupported"
	}
}

var ErrUnsupportedTopology = errors.New("classify: unsupported folder topology")

// Coder is the minimal view of a folder coder the classifier needs.
type Coder struct {
	Method     method.ID
	NumStreams int
}

// Bond is a directed edge: coder InIndex consumes the output of coder
// OutIndex.
type Bond struct {
	InIndex, OutIndex int
}

// Input describes a folder graph, the subset of Folder the classifier
// reasons about.
type Input struct {
	Coders      []Coder
	Bonds       []Bond
	PackStreams []int // coder-input index fed by the i-th packed stream
}

// Result is the classifier's verdict: the accepted shape plus, where
// useful, which coder index plays which structural role.
type Result struct {
	Shape Shape

	// MainIndex is the primary decompressor coder (S1, S3, S4; BCJ2
	// uses MainIndices instead).
	MainIndex int

	// FilterIndex is the branch/Delta filter coder (S3 only).
	FilterIndex int

	// AESIndex is the AES coder (S2, S4).
	AESIndex int

	// MainIndices are the three main-decompressor coders feeding the
	// BCJ2 demultiplexer's main/call/jump inputs, and BCJ2Index the
	// demultiplexer itself, for an S5 BCJ2 folder, in the fixed wiring
	// spec.md §4.5 mandates.
	MainIndices [3]int
	BCJ2Index   int
}

func bondBetween(bonds []Bond, a, b int) bool {
	for _, bp := range bonds {
		if (bp.InIndex == a && bp.OutIndex == b) || (bp.InIndex == b && bp.OutIndex == a) {
			return true
		}
	}

	return false
}

func isMain(id method.ID) bool {
	return id.Kind() == method.KindMain
}

func isFilter(id method.ID) bool {
	return id.Kind() == method.KindFilter
}

// Classify reduces in to one of S1-S5, or ErrUnsupportedTopology.
//
//nolint:cyclop,funlen
func Classify(in Input) (Result, error) {
	switch len(in.Coders) {
	case 1:
		return classifyOne(in)
	case 2:
		return classifyTwo(in)
	case 4:
		return classifyFour(in)
	default:
		return Result{}, ErrUnsupportedTopology
	}
}

func classifyOne(in Input) (Result, error) {
	if len(in.Bonds) != 0 || len(in.PackStreams) != 1 || in.PackStreams[0] != 0 {
		return Result{}, ErrUnsupportedTopology
	}

	switch in.Coders[0].Method.Kind() {
	case method.KindMain:
		return Result{Shape: ShapeSingleMain, MainIndex: 0}, nil
	case method.KindAES:
		return Result{Shape: ShapeAESOnly, AESIndex: 0}, nil
	default:
		return Result{}, ErrUnsupportedTopology
	}
}

func classifyTwo(in Input) (Result, error) {
	if len(in.Bonds) != 1 || len(in.PackStreams) != 1 {
		return Result{}, ErrUnsupportedTopology
	}

	c0, c1 := in.Coders[0].Method, in.Coders[1].Method

	// S3: Filter+Main, bond (1,0), pack stream at coder-input 0.
	if isMain(c0) && isFilter(c1) && in.Bonds[0].InIndex == 1 && in.Bonds[0].OutIndex == 0 &&
		in.PackStreams[0] == 0 {
		return Result{Shape: ShapeFilterMain, MainIndex: 0, FilterIndex: 1}, nil
	}

	// S4: AES+Main, exactly one bond connecting the two coders, in
	// either order.
	switch {
	case c0.Kind() == method.KindAES && isMain(c1) && bondBetween(in.Bonds, 0, 1):
		return Result{Shape: ShapeAESMain, AESIndex: 0, MainIndex: 1}, nil
	case c1.Kind() == method.KindAES && isMain(c0) && bondBetween(in.Bonds, 0, 1):
		return Result{Shape: ShapeAESMain, AESIndex: 1, MainIndex: 0}, nil
	default:
		return Result{}, ErrUnsupportedTopology
	}
}

// The hard-wired S5 BCJ2 wiring: 4 pack streams at exact coder-input
// indices [2,6,1,0], bonds (5,0),(4,1),(3,2). These constants encode the
// one real-world BCJ2 graph shape; spec.md §9 is explicit that no
// generalisation beyond them is warranted.
//
//nolint:gochecknoglobals
var (
	bcj2PackStreams = []int{2, 6, 1, 0}
	bcj2Bonds       = []Bond{{InIndex: 5, OutIndex: 0}, {InIndex: 4, OutIndex: 1}, {InIndex: 3, OutIndex: 2}}
)

func classifyFour(in Input) (Result, error) {
	if len(in.Bonds) != len(bcj2Bonds) || len(in.PackStreams) != len(bcj2PackStreams) {
		return Result{}, ErrUnsupportedTopology
	}

	for i, ps := range bcj2PackStreams {
		if in.PackStreams[i] != ps {
			return Result{}, ErrUnsupportedTopology
		}
	}

	for i, b := range bcj2Bonds {
		if in.Bonds[i] != b {
			return Result{}, ErrUnsupportedTopology
		}
	}

	// coder0 feeds BCJ2's jump input via bond (5,0), coder1 feeds call
	// via (4,1), coder2 feeds main via (3,2) — all three must be main
	// decompressors.
	if !isMain(in.Coders[0].Method) || !isMain(in.Coders[1].Method) || !isMain(in.Coders[2].Method) {
		return Result{}, ErrUnsupportedTopology
	}

	if in.Coders[3].Method.Kind() != method.KindBCJ2 || in.Coders[3].NumStreams != 4 {
		return Result{}, ErrUnsupportedTopology
	}

	return Result{Shape: ShapeBCJ2, MainIndices: [3]int{0, 1, 2}, BCJ2Index: 3}, nil
}
