package sevenzip

import (
	"fmt"

	"github.com/bodgit/sevenzip/internal/bra"
	"github.com/bodgit/sevenzip/internal/delta"
	"github.com/bodgit/sevenzip/internal/method"
)

// applyFilter reverses one branch-conversion or Delta filter on buf in
// place, the S3 shape's second pipeline stage (spec.md §4.2, §4.5).
func applyFilter(id method.ID, props, buf []byte, cfg *Config) error {
	if !cfg.filtersEnabled && id != method.Delta && id != method.BCJ {
		return newError(KindUnsupported, "applyFilter", fmt.Errorf("filter %s disabled", id))
	}

	if !cfg.nativeARMFilters && (id == method.ARM64 || id == method.ARMT) {
		return newError(KindUnsupported, "applyFilter", fmt.Errorf("filter %s requires WithNativeARMFilters", id))
	}

	if id == method.Delta {
		distance, err := delta.DecodeProperties(props)
		if err != nil {
			return newError(KindData, "applyFilter", err)
		}

		delta.Decode(buf, distance)

		return nil
	}

	if err := bra.Decode(id, buf, props); err != nil {
		return newError(KindData, "applyFilter", err)
	}

	return nil
}
