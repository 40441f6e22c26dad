// Package cidutil derives content identifiers for corpus files.
//
// Corpus bytes are append-only during construction and strictly read-only
// during classification; the CID recorded in the report pins the exact
// bytes every implementation digested, so a disputed run can be traced to
// its inputs.
package cidutil

import (
	"crypto/sha256"
	"io"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec and a
// sha2-256 multihash.
func CIDv1RawSHA256(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

// CIDForFile streams the file at path through sha2-256 and returns the
// CIDv1 (raw codec) string for its contents. Corpus binaries can be large;
// memory use stays constant.
func CIDForFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	sum, err := multihash.Encode(h.Sum(nil), multihash.SHA2_256)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
