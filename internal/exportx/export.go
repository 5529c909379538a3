// Package exportx implements the portable backup format: a gzip-compressed,
// optionally AES-GCM-encrypted JSON document of journal entries. The export
// key path is independent of the session master key (see
// cryptox.DeriveExportKey), so a backup never becomes a second way to open
// the live journal.
package exportx

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/inkveil/inkveil/internal/codecx"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/cryptox"
)

// FormatVersion is written into every export and bumped on breaking layout
// changes.
const FormatVersion = 1

const exportSaltSize = 16

// Entry is one journal entry in plaintext export form.
type Entry struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// ContentHash deduplicates entries on import. Purely a client-side
	// convenience, not a security primitive.
	ContentHash string `json:"contentHash"`
}

type document struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Entries    []Entry   `json:"entries"`
}

// Metadata describes an encrypted export without revealing its contents.
type Metadata struct {
	App        string    `json:"app"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
}

// wrapper is the on-disk shape of an encrypted export. Data, IV and Salt
// are base64; Metadata stays readable so tooling can identify the file.
type wrapper struct {
	Encrypted bool     `json:"encrypted"`
	Metadata  Metadata `json:"metadata"`
	Data      string   `json:"data"`
	IV        string   `json:"iv"`
	Salt      string   `json:"salt"`
}

// Result is what Import hands back to the caller.
type Result struct {
	Entries      []Entry
	WasEncrypted bool
}

// MergePolicy selects how imported entries are reconciled against the
// caller's existing set.
type MergePolicy int

const (
	// MergeImportAll imports everything, allowing duplicates.
	MergeImportAll MergePolicy = iota
	// MergeNewOnly skips entries whose content hash already exists.
	MergeNewOnly
	// MergeReplaceAll expects the caller to delete existing entries first.
	// Destructive: the codec never performs the deletion itself, and the
	// caller must confirm it explicitly.
	MergeReplaceAll
)

// ContentHash computes the dedup hash over the canonical "title:content"
// string, hex-encoded.
func ContentHash(title, content string) string {
	sum := sha256.Sum256([]byte(title + ":" + content))
	return hex.EncodeToString(sum[:])
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// Export serializes entries into a backup blob. With a nil passphrase the
// document is only compressed; otherwise a fresh random salt is generated,
// an export key derived, and the compressed document AEAD-encrypted before
// the wrapper is compressed once more for transport.
//
// Missing content hashes are filled in so every exported entry can be
// deduplicated on import.
func Export(entries []Entry, passphrase []byte) ([]byte, error) {
	doc := document{Version: FormatVersion, ExportedAt: time.Now().UTC()}
	doc.Entries = make([]Entry, len(entries))
	for i, e := range entries {
		if e.ContentHash == "" {
			e.ContentHash = ContentHash(e.Title, e.Content)
		}
		doc.Entries[i] = e
	}

	serialized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serializing export: %w", err)
	}
	compressed, err := gzipBytes(serialized)
	if err != nil {
		return nil, fmt.Errorf("compressing export: %w", err)
	}

	inner := compressed
	if passphrase != nil {
		salt := common.GenerateRandByteArray(exportSaltSize)
		key, err := cryptox.DeriveExportKey(passphrase, salt)
		if err != nil {
			return nil, err
		}
		defer common.WipeByteArray(key)

		cipherText, iv, err := cryptox.EncryptPayload(key, compressed)
		if err != nil {
			return nil, fmt.Errorf("encrypting export: %w", err)
		}

		w := wrapper{
			Encrypted: true,
			Metadata:  Metadata{App: "inkveil", Version: FormatVersion, ExportedAt: doc.ExportedAt},
			Data:      codecx.EncodeBase64(cipherText),
			IV:        codecx.EncodeBase64(iv),
			Salt:      codecx.EncodeBase64(salt),
		}
		inner, err = json.Marshal(w)
		if err != nil {
			return nil, fmt.Errorf("serializing wrapper: %w", err)
		}
	}

	out, err := gzipBytes(inner)
	if err != nil {
		return nil, fmt.Errorf("compressing wrapper: %w", err)
	}
	return out, nil
}

// Import reverses Export. It distinguishes exactly three outcomes:
// a structurally invalid file (common.ErrFormat), an encrypted file with a
// missing or wrong passphrase (common.ErrPassphrase), and success. A wrong
// passphrase can never yield a decrypted-but-garbled result: the AEAD tag
// check fails first.
func Import(blob, passphrase []byte) (*Result, error) {
	inner, err := gunzipBytes(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: not a compressed export", common.ErrFormat)
	}

	// A plain export holds the compressed document directly; an encrypted
	// one holds the JSON wrapper.
	if isGzip(inner) {
		doc, err := parseDocument(inner)
		if err != nil {
			return nil, err
		}
		return &Result{Entries: doc.Entries, WasEncrypted: false}, nil
	}

	var w wrapper
	if err := json.Unmarshal(inner, &w); err != nil || !w.Encrypted {
		return nil, fmt.Errorf("%w: unrecognized layout", common.ErrFormat)
	}

	if passphrase == nil {
		return nil, fmt.Errorf("%w: file is encrypted", common.ErrPassphrase)
	}

	cipherText, err := codecx.DecodeBase64(w.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: bad data encoding", common.ErrFormat)
	}
	iv, err := codecx.DecodeBase64(w.IV)
	if err != nil {
		return nil, fmt.Errorf("%w: bad iv encoding", common.ErrFormat)
	}
	if len(iv) != common.IVSize {
		return nil, fmt.Errorf("%w: bad iv length", common.ErrFormat)
	}
	salt, err := codecx.DecodeBase64(w.Salt)
	if err != nil {
		return nil, fmt.Errorf("%w: bad salt encoding", common.ErrFormat)
	}

	key, err := cryptox.DeriveExportKey(passphrase, salt)
	if err != nil {
		return nil, fmt.Errorf("%w: undecryptable salt", common.ErrFormat)
	}
	defer common.WipeByteArray(key)

	compressed, err := cryptox.DecryptPayload(key, cipherText, iv)
	if err != nil {
		// Tag mismatch here means wrong passphrase, not a broken file; the
		// structure already parsed.
		return nil, fmt.Errorf("%w", common.ErrPassphrase)
	}

	doc, err := parseDocument(compressed)
	if err != nil {
		return nil, err
	}
	return &Result{Entries: doc.Entries, WasEncrypted: true}, nil
}

func parseDocument(compressed []byte) (*document, error) {
	serialized, err := gunzipBytes(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt document", common.ErrFormat)
	}
	var doc document
	if err := json.Unmarshal(serialized, &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt document", common.ErrFormat)
	}
	return &doc, nil
}

// Merge applies a merge policy against the set of existing content hashes
// and returns the entries that should actually be inserted. For
// MergeReplaceAll the caller has already (with explicit confirmation)
// deleted its entries, so everything imports.
func Merge(imported []Entry, existingHashes map[string]bool, policy MergePolicy) []Entry {
	if policy != MergeNewOnly {
		return imported
	}
	out := make([]Entry, 0, len(imported))
	for _, e := range imported {
		h := e.ContentHash
		if h == "" {
			h = ContentHash(e.Title, e.Content)
		}
		if existingHashes[h] {
			continue
		}
		out = append(out, e)
	}
	return out
}
