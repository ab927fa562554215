package typeset

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTypeSet prefixes TypeSet content hashes.
// The version suffix leaves room for changing the key encoding.
const DomainTypeSet = "polytype/typeset/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash returns a content-addressed identity for ts, stable across processes.
// Two TypeSets have the same Hash exactly when they are ==.
func (ts TypeSet) Hash() string {
	key := fmt.Sprintf("lanes=%s;ints=%s;floats=%s;bools=%s",
		ts.lanes, ts.ints, ts.floats, ts.bools)
	return hashWithDomain(DomainTypeSet, []byte(key))
}
