package wire

import "errors"

// ErrParsingError is returned for any malformed frame: truncated body,
// bad length prefix, or a body that fails its fixed-width field layout.
// The dispatcher and Core.ProcessDatagram return it to their caller; no
// count of parsing failures is kept.
var ErrParsingError = errors.New("wire: parsing error")
