package canonicalize

import (
	"encoding/json"
	"testing"
)

func FuzzJCS(f *testing.F) {
	// Seed corpus with interesting payloads
	f.Add([]byte(`{"a":1,"b":2}`))
	f.Add([]byte(`{"z":{"y":"foo","x":"bar"},"a":1}`))
	f.Add([]byte(`{"html":"<script>alert('xss')</script> &"}`))
	f.Add([]byte(`{"num":123.456,"bool":true,"null":null}`))
	f.Add([]byte(`{"arr":[3,1,2],"nested":{"deep":{"key":"val"}}}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`{"":"empty_key","a":""}`))
	f.Add([]byte(`{"unicode":"こんにちは","emoji":"🚀"}`))
	f.Add([]byte(`{"escape":"line1\nline2\ttab"}`))
	f.Add([]byte(`{"lamport_clock":0,"prev_hash":"GENESIS"}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			t.Skip("invalid JSON input")
			return
		}

		// Canonicalization must not panic on any valid JSON
		b1, err := JCS(v)
		if err != nil {
			// Some valid JSON may not be representable; that's OK
			return
		}

		// Determinism: same input must produce identical output
		b2, err := JCS(v)
		if err != nil {
			t.Fatal("JCS returned error on second call but not first")
		}
		if string(b1) != string(b2) {
			t.Fatalf("non-deterministic output: %s vs %s", b1, b2)
		}

		// Output must itself be valid JSON
		var check interface{}
		if err := json.Unmarshal(b1, &check); err != nil {
			t.Fatalf("canonical output is not valid JSON: %v", err)
		}

		// Hashing the canonical form must be stable too
		if TaggedHash(b1) != TaggedHash(b2) {
			t.Fatal("tagged hash of identical bytes differs")
		}
	})
}
