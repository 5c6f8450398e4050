package storage

import "encoding/json"

// marshalJSON and unmarshalJSON wrap encoding/json directly: bun's
// jsonb columns just want raw bytes, and canon.Marshal's extra
// determinism guarantees (sorted keys, no whitespace) matter only for
// hashing, not for storage round-trips.
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
