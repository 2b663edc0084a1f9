package isochrone

import "errors"

var (
	// ErrInvalidArgument non positive budget, out of range strategy params or unknown strategy.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPreconditionFailed empty graph or an origin that can not be reprojected or snapped.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrGeometryFailed the buffer, union or hull behind a polygon failed.
	ErrGeometryFailed = errors.New("isochrone geometry failed")
)
