package bra

import (
	"fmt"

	"github.com/bodgit/sevenzip/internal/method"
)

// Decode applies the branch-conversion filter named by id to buf in
// place, using the starting program counter encoded in props (spec.md
// §4.2). Delta is not handled here; see package delta.
func Decode(id method.ID, buf, props []byte) error {
	pc, err := DecodeProperties(props)
	if err != nil {
		return err
	}

	switch id {
	case method.BCJ:
		DecodeBCJ(buf, pc)
	case method.ARM:
		DecodeARM(buf, pc)
	case method.ARMT:
		DecodeARMT(buf, pc)
	case method.ARM64:
		return DecodeARM64(buf, pc)
	case method.PPC:
		DecodePPC(buf, pc)
	case method.SPARC:
		DecodeSPARC(buf, pc)
	case method.IA64:
		DecodeIA64(buf, pc)
	case method.RISCV:
		return DecodeRISCV(buf, pc)
	default:
		return fmt.Errorf("bra: unsupported filter method %s", id)
	}

	return nil
}
