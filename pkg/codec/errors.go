package codec

import "errors"

// ErrShortBuffer indicates a read beyond the end of the payload.
var ErrShortBuffer = errors.New("short buffer")
