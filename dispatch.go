package sevenzip

import (
	"fmt"

	"github.com/bodgit/sevenzip/internal/copy"
	"github.com/bodgit/sevenzip/internal/lzma"
	"github.com/bodgit/sevenzip/internal/lzma2"
	"github.com/bodgit/sevenzip/internal/method"
	"github.com/bodgit/sevenzip/internal/ppmd"
	"github.com/bodgit/sevenzip/internal/stream"
	"github.com/bodgit/sevenzip/internal/zstd"
)

// decodeMain runs one main-decompressor coder, per the primitive-decoder
// contract of spec.md §4.1: consume exactly inputByteCount bytes from
// in, fill output completely.
func decodeMain(id method.ID, props []byte, in stream.LookInStream, inputByteCount uint64, output []byte, cfg *Config) error {
	switch id {
	case method.Copy:
		return copy.Decode(props, in, inputByteCount, output)
	case method.LZMA:
		return lzma.Decode(props, in, inputByteCount, output)
	case method.LZMA2:
		if !cfg.lzma2Support {
			return newError(KindUnsupported, "decodeMain", fmt.Errorf("LZMA2 disabled"))
		}

		return lzma2.Decode(props, in, inputByteCount, output)
	case method.Zstd:
		return zstd.Decode(props, in, inputByteCount, output)
	case method.PPMd:
		if !cfg.ppmdSupport {
			return newError(KindUnsupported, "decodeMain", fmt.Errorf("PPMd disabled"))
		}

		return ppmd.Decode(props, in, inputByteCount, output)
	default:
		return newError(KindUnsupported, "decodeMain", fmt.Errorf("method %s is not a main decompressor", id))
	}
}
