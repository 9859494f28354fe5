package pack

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/evidentsys/evident/pkg/canonicalize"
	"github.com/evidentsys/evident/pkg/contracts"
)

// Structural error sentinels. Each failure mode is distinct so
// downstream tooling can discriminate corruption from tampering.
var (
	ErrMalformedArchive = errors.New("malformed archive")
	ErrMissingManifest  = errors.New("manifest.json not found in pack")
)

// OrphanSessionError marks a receipt file whose session is not
// declared in the manifest.
type OrphanSessionError struct {
	SessionID string
}

func (e *OrphanSessionError) Error() string {
	return fmt.Sprintf("orphan receipts for session %s not declared in manifest", e.SessionID)
}

// DuplicateReceiptError marks a receipt id appearing in more than one
// session.
type DuplicateReceiptError struct {
	ReceiptID string
	Sessions  []string
}

func (e *DuplicateReceiptError) Error() string {
	return fmt.Sprintf("receipt %s appears in sessions %s", e.ReceiptID, strings.Join(e.Sessions, ", "))
}

// FileHashError marks a pack file whose content does not match the
// manifest's declared hash: the archive was altered after export.
type FileHashError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *FileHashError) Error() string {
	return fmt.Sprintf("file %s hash mismatch: manifest declares %s, got %s", e.Name, e.Expected, e.Actual)
}

// supportedVersions gates the manifest export format.
var supportedVersions = semver.MustParse("1.0.0")

// Pack is the parsed, read-only view of an evidence bundle.
type Pack struct {
	Manifest *Manifest
	// SessionIDs preserves manifest declaration order.
	SessionIDs []string
	// Receipts maps session id to its ordered receipt sequence.
	Receipts map[string][]*contracts.Receipt
}

// Read parses a tar.gz evidence bundle.
//
// Structural failures (malformed archive, missing manifest, orphan
// receipts, duplicated receipt ids, altered files) abort the read with
// a typed error. Count mismatches against the manifest are NOT
// structural: they are completeness findings left to the verification
// aggregator, so an incomplete pack still yields a report instead of a
// parse failure.
func Read(r io.Reader) (*Pack, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", ErrMalformedArchive, err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)

	var manifest *Manifest
	files := make(map[string][]byte)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: tar: %v", ErrMalformedArchive, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrMalformedArchive, hdr.Name, err)
		}

		if hdr.Name == manifestName {
			var m Manifest
			if err := json.Unmarshal(data, &m); err != nil {
				return nil, fmt.Errorf("%w: decode manifest: %v", ErrMalformedArchive, err)
			}
			manifest = &m
			continue
		}
		files[hdr.Name] = data
	}

	if manifest == nil {
		return nil, ErrMissingManifest
	}
	if err := checkVersion(manifest.Version); err != nil {
		return nil, err
	}

	for name, data := range files {
		expected, ok := manifest.FileHashes[name]
		if !ok {
			continue
		}
		if actual := canonicalize.HashBytes(data); actual != expected {
			return nil, &FileHashError{Name: name, Expected: expected, Actual: actual}
		}
	}

	declared := make(map[string]bool, len(manifest.Sessions))
	for _, s := range manifest.Sessions {
		declared[s.SessionID] = true
	}

	pack := &Pack{
		Manifest: manifest,
		Receipts: make(map[string][]*contracts.Receipt),
	}
	for _, s := range manifest.Sessions {
		pack.SessionIDs = append(pack.SessionIDs, s.SessionID)
	}

	seen := make(map[string]string) // receipt id → session id
	for name, data := range files {
		sessionID, ok := sessionFromPath(name)
		if !ok {
			continue
		}
		if !declared[sessionID] {
			return nil, &OrphanSessionError{SessionID: sessionID}
		}

		receipts, err := decodeReceipts(sessionID, data)
		if err != nil {
			return nil, err
		}
		for _, r := range receipts {
			if prev, dup := seen[r.ReceiptID]; dup && prev != sessionID {
				return nil, &DuplicateReceiptError{ReceiptID: r.ReceiptID, Sessions: []string{prev, sessionID}}
			}
			seen[r.ReceiptID] = sessionID
		}
		pack.Receipts[sessionID] = receipts
	}

	return pack, nil
}

func checkVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: manifest missing version", ErrMalformedArchive)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: manifest version %q: %v", ErrMalformedArchive, version, err)
	}
	if v.Major() != supportedVersions.Major() {
		return fmt.Errorf("%w: unsupported export format version %s (supported: %d.x)",
			ErrMalformedArchive, version, supportedVersions.Major())
	}
	return nil
}

func sessionFromPath(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, "sessions/")
	if !ok {
		return "", false
	}
	sessionID, file, ok := strings.Cut(rest, "/")
	if !ok || file != "receipts.json" || sessionID == "" {
		return "", false
	}
	return sessionID, true
}

// decodeReceipts validates each raw receipt object against the wire
// schema, then decodes strictly. The schema closes the status and
// reason_code enums at the boundary.
func decodeReceipts(sessionID string, data []byte) ([]*contracts.Receipt, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: session %s receipts: %v", ErrMalformedArchive, sessionID, err)
	}

	receipts := make([]*contracts.Receipt, 0, len(raws))
	for i, raw := range raws {
		if err := validateReceipt(raw); err != nil {
			return nil, fmt.Errorf("session %s receipt %d: %w", sessionID, i, err)
		}
		var r contracts.Receipt
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("session %s receipt %d: %w", sessionID, i, err)
		}
		receipts = append(receipts, &r)
	}
	return receipts, nil
}
