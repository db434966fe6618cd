package stash

const (
	tokenInt       byte = 1
	tokenBytes     byte = 2
	tokenText      byte = 3
	tokenReal      byte = 4
	tokenList      byte = 5
	tokenTuple     byte = 6
	tokenSet       byte = 7
	tokenFrozenSet byte = 8
	tokenDict      byte = 9
	tokenTrue      byte = 11
	tokenFalse     byte = 12
	tokenByteArray byte = 13
)

// maxInlineChunk is the largest encoding stored inline in its parent
const maxInlineChunk = 255
