// Package canon implements the canonical JSON encoding and content
// hashing rules of spec §6: UTF-8, sorted object keys, no whitespace,
// numbers without trailing zeros, arrays in author order. encoding/json
// already sorts map keys, emits compact output with Marshal, and writes
// floats in their shortest form without trailing zeros; this package
// only adds the hashing step.
package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex-encoded SHA-256 of v's canonical JSON encoding.
// v must be JSON-marshalable; a marshal error collapses to a
// distinguishable "error:"-prefixed sentinel rather than panicking,
// since Hash is used in hot tick-recording paths. Callers store the
// returned string as-is; none of them checks for the sentinel.
func Hash(v interface{}) string {
	raw, err := Marshal(v)
	if err != nil {
		return "error:" + err.Error()
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Marshal produces the canonical encoding: compact, sorted object keys
// (Go's encoding/json already sorts map[string]T keys), arrays left in
// author order.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
