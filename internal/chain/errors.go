package chain

import "errors"

// Domain errors for chain configuration.
var (
	// ErrLinkCount indicates a chain with fewer than 1 or more than 3 links.
	ErrLinkCount = errors.New("chain: link count must be between 1 and 3")

	// ErrLinkIndex indicates a parameter addressed to a link the chain does not have.
	ErrLinkIndex = errors.New("chain: link index out of range")

	// ErrUnknownParam indicates a parameter name no setter recognises.
	ErrUnknownParam = errors.New("chain: unknown parameter")

	// ErrCapacity indicates a trail capacity outside the accepted range.
	ErrCapacity = errors.New("chain: trail capacity out of range")
)
