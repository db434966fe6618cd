package codec

// TagBase exposes the first value tag number to tests
const TagBase = tagBase
