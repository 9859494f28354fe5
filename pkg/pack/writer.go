// Package pack implements the portable evidence pack format: a tar.gz
// bundle holding a manifest plus the full receipt sequence for each
// referenced session.
package pack

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/evidentsys/evident/pkg/canonicalize"
	"github.com/evidentsys/evident/pkg/contracts"
)

// FormatVersion is the export format version written into manifests.
const FormatVersion = "1.0"

const manifestName = "manifest.json"

// Manifest is written as manifest.json inside the evidence pack.
type Manifest struct {
	Version    string              `json:"version"`
	ExportedAt string              `json:"exported_at"`
	Sessions   []contracts.Session `json:"sessions"`
	FileHashes map[string]string   `json:"file_hashes"`
}

func receiptsPath(sessionID string) string {
	return "sessions/" + sessionID + "/receipts.json"
}

// Write serializes sessions and their receipt sequences into a
// deterministic tar.gz evidence pack.
// Determinism: sorted paths, fixed mtime(0), stable uid/gid(0),
// manifest written first.
func Write(w io.Writer, sessions map[string][]*contracts.Receipt) error {
	ids := make([]string, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	manifest := Manifest{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Sessions:   make([]contracts.Session, 0, len(ids)),
		FileHashes: make(map[string]string),
	}

	files := make(map[string][]byte, len(ids))
	for _, id := range ids {
		receipts := sessions[id]
		data, err := json.MarshalIndent(receipts, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal receipts for session %s: %w", id, err)
		}
		name := receiptsPath(id)
		files[name] = data
		manifest.FileHashes[name] = canonicalize.HashBytes(data)

		entry := contracts.Session{
			SessionID:    id,
			ReceiptCount: len(receipts),
		}
		if len(receipts) > 0 {
			entry.CreatedAt = receipts[0].Timestamp
			entry.LastLamportClock = receipts[len(receipts)-1].LamportClock
		}
		manifest.Sessions = append(manifest.Sessions, entry)
	}

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	if err := writeEntry(tw, manifestName, manifestBytes); err != nil {
		return err
	}
	for _, id := range ids {
		name := receiptsPath(id)
		if err := writeEntry(tw, name, files[name]); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("close gzip: %w", err)
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0644,
		ModTime: time.Unix(0, 0),
		Uid:     0,
		Gid:     0,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write data %s: %w", name, err)
	}
	return nil
}
