package rate

import "errors"

// ErrStoreUnavailable is an exported constant or variable used by the admission engine.
var ErrStoreUnavailable = errors.New("bucket store unavailable")
