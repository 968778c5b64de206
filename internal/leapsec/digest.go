package leapsec

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// digestDomain separates table digests from any other SHA-256 use.
// The suffix allows a future change of the digest input.
const digestDomain = "tscale/leap-table/v1"

// Digest returns a content hash of the table: SHA256(domain + 0x00 + data)
// where data lists the base offset and every entry in MJD order. Two tables
// have the same digest exactly when they answer every query the same way.
func (t *Table) Digest() string {
	h := sha256.New()
	h.Write([]byte(digestDomain))
	h.Write([]byte{0x00})
	fmt.Fprintf(h, "base %d\n", t.base)
	for _, e := range t.entries {
		fmt.Fprintf(h, "%d %+d\n", e.MJD, e.Adjustment)
	}
	return hex.EncodeToString(h.Sum(nil))
}
