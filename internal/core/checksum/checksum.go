// Package checksum derives the content addressed keys of cache entries
package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	perr "seogate/internal/platform/errors"
)

// Of hashes the canonical JSON form of v: object keys sorted at every depth,
// so two values that differ only in key order share a checksum
func Of(v any) (string, error) {
	canon, err := Canonical(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}

// Canonical returns the compact JSON encoding of v with sorted object keys
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "checksum marshal")
	}
	// a generic round trip turns structs into maps, which encoding/json writes in key order
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "checksum decode")
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "checksum marshal")
	}
	return out, nil
}
