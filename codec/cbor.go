package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// maxNestedLevels bounds decoder recursion. Every level of a test value
// costs up to two CBOR levels (tag + array), so this leaves room for
// values far deeper than the corpus ever gets.
const maxNestedLevels = 1024

var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()

	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels: maxNestedLevels,
	}.DecMode()

	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. It fails if data is not well-formed CBOR.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
