package canonicalize

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestJCS_Sorting(t *testing.T) {
	// Map with unsorted keys
	input := map[string]interface{}{
		"c": 3,
		"a": 1,
		"b": 2,
	}

	// Expected: {"a":1,"b":2,"c":3}
	expected := `{"a":1,"b":2,"c":3}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}

	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestJCS_RecursiveSorting(t *testing.T) {
	input := map[string]interface{}{
		"z": map[string]interface{}{
			"y": "foo",
			"x": "bar",
		},
		"a": 1,
	}

	expected := `{"a":1,"z":{"x":"bar","y":"foo"}}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}

	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestJCS_NoHTMLEscaping(t *testing.T) {
	input := map[string]string{
		"html": "<script>alert('xss')</script> &",
	}

	// Standard encoding/json escapes <, > and &.
	// RFC 8785 requires the raw characters.
	expected := `{"html":"<script>alert('xss')</script> &"}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}

	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestJCS_StructTags(t *testing.T) {
	// Struct fields canonicalize under their json tags, not Go names.
	input := struct {
		ReceiptID    string `json:"receipt_id"`
		LamportClock uint64 `json:"lamport_clock"`
	}{
		ReceiptID:    "r-1",
		LamportClock: 7,
	}

	expected := `{"lamport_clock":7,"receipt_id":"r-1"}`

	b, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}

	if string(b) != expected {
		t.Errorf("Expected %s, got %s", expected, string(b))
	}
}

func TestJCS_Stability(t *testing.T) {
	input := map[string]interface{}{
		"num":  123.456,
		"bool": true,
		"null": nil,
		"arr":  []interface{}{3, 1, 2},
	}

	b1, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed: %v", err)
	}
	b2, err := JCS(input)
	if err != nil {
		t.Fatalf("JCS failed on second call: %v", err)
	}

	if string(b1) != string(b2) {
		t.Errorf("JCS is not deterministic: %s vs %s", b1, b2)
	}
}

func TestHashBytes(t *testing.T) {
	// sha256("") is a well-known vector.
	got := HashBytes(nil)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestTaggedHash(t *testing.T) {
	got := TaggedHash([]byte("hello"))

	if !strings.HasPrefix(got, "sha256:") {
		t.Errorf("Expected sha256: prefix, got %s", got)
	}
	if len(got) != len("sha256:")+64 {
		t.Errorf("Expected 64 hex chars after tag, got %s", got)
	}
}

func TestCanonicalHash_KeyOrderInvariance(t *testing.T) {
	// Two JSON documents with the same content but different key order
	// must hash identically.
	var a, b interface{}
	if err := json.Unmarshal([]byte(`{"x":1,"y":2}`), &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`{"y":2,"x":1}`), &b); err != nil {
		t.Fatal(err)
	}

	ha, err := CanonicalHash(a)
	if err != nil {
		t.Fatalf("CanonicalHash failed: %v", err)
	}
	hb, err := CanonicalHash(b)
	if err != nil {
		t.Fatalf("CanonicalHash failed: %v", err)
	}

	if ha != hb {
		t.Errorf("Equal content hashed differently: %s vs %s", ha, hb)
	}
}

func TestCanonicalHash_ContentSensitivity(t *testing.T) {
	h1, err := CanonicalHash(map[string]string{"status": "APPROVED"})
	if err != nil {
		t.Fatalf("CanonicalHash failed: %v", err)
	}
	h2, err := CanonicalHash(map[string]string{"status": "DENIED"})
	if err != nil {
		t.Fatalf("CanonicalHash failed: %v", err)
	}

	if h1 == h2 {
		t.Error("Different content produced identical hashes")
	}
}
