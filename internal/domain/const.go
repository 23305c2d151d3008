package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// Cursor key prefix in the key-value store
	BLOCK_CURSOR_KEY_PREFIX = "block_cursor:"
)
