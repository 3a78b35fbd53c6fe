package extract

import "errors"

// Parse errors are fatal to ingestion: callers never receive a partial document.
var (
	ErrMissingSeparator = errors.New("missing blank line separating header metadata and line items")
	ErrNoLineItems      = errors.New("no line items")
	ErrUnreadableMarkup = errors.New("unreadable layout markup")
	ErrEmptyInput       = errors.New("refusing to parse an empty buffer")
)
