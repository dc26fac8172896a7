package ir

// Version constants for the encoded operand format.
const (
	// FormatVersion is the version of the JSON operand encoding.
	FormatVersion = "1"

	// LibraryVersion is the qom library version.
	LibraryVersion = "0.1.0"
)
