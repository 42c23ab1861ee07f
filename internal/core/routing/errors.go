package routing

import "errors"

// ErrUnknownOrigin names the case of an advertisement whose origin has
// no known credential. No function returns it: OnAdvertisement drops
// such a frame and reports false.
var ErrUnknownOrigin = errors.New("routing: unknown advertisement origin")
