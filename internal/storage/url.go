package storage

import (
	"fmt"
	"strings"
)

// URLMapper translates between storage refs ("s3://bucket/key") and public
// URLs. Persisted rows store the public form; storage operations need the
// native ref. With the CDN disabled both directions are the identity, so a
// ref written under either configuration still round-trips.
type URLMapper struct {
	bucket     string
	cdnEnabled bool
	cdnDomain  string
}

// NewURLMapper builds a mapper for the given bucket and CDN settings.
func NewURLMapper(bucket string, cdnEnabled bool, cdnDomain string) URLMapper {
	return URLMapper{bucket: bucket, cdnEnabled: cdnEnabled, cdnDomain: cdnDomain}
}

// ToPublicURL maps a storage ref to the externally servable URL.
func (m URLMapper) ToPublicURL(ref string) string {
	if !m.cdnEnabled || ref == "" {
		return ref
	}
	key, ok := m.keyFromRef(ref)
	if !ok {
		return ref
	}
	return "https://" + m.cdnDomain + "/" + key
}

// ToStorageRef maps a public URL back to the storage ref. Unrecognized
// inputs pass through untouched.
func (m URLMapper) ToStorageRef(url string) string {
	if !m.cdnEnabled || url == "" {
		return url
	}
	prefix := "https://" + m.cdnDomain + "/"
	if !strings.HasPrefix(url, prefix) {
		return url
	}
	return fmt.Sprintf("s3://%s/%s", m.bucket, strings.TrimPrefix(url, prefix))
}

// keyFromRef extracts the object key from an "s3://bucket/key" ref.
func (m URLMapper) keyFromRef(ref string) (string, bool) {
	prefix := "s3://" + m.bucket + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	return strings.TrimPrefix(ref, prefix), true
}
