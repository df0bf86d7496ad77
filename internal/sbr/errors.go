package sbr

import (
	"errors"
	"fmt"
)

// ErrNotFiltered is returned by queries that require an annotated
// bundle. Empty bundles and all-filtered-out results are valid states;
// only a bundle that never went through ApplyFilter is an error.
var ErrNotFiltered = errors.New("bundle has no filter provenance: call ApplyFilter first")

// InvalidTrackTypeError reports an unrecognized track-type token, either
// in a FilterConfig or on a track itself. Surfaced immediately with no
// partial recovery.
type InvalidTrackTypeError struct {
	Token string
}

func (e *InvalidTrackTypeError) Error() string {
	return fmt.Sprintf("invalid track type %q (want %q or %q)", e.Token, TrackTypeSBR, TrackTypeUTD)
}
