package reconcile

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

// Hash is a 128-bit content fingerprint.
type Hash [md5.Size]byte

// String returns the lowercase hex form.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Fingerprint hashes the tracked fields of job in canonical order.
// encoding/json sorts map keys, so the digest does not depend on field declaration order.
func Fingerprint(job NormalizedJob) Hash {
	// Marshalling a map[string]string cannot fail.
	data, _ := json.Marshal(job.Values())
	return md5.Sum(data)
}
