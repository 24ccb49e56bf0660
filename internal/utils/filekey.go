package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Image roles used in clothing item object keys.
const (
	ImageRoleOriginal = "original"
	ImageRoleModified = "modified"
)

const keySuffixLen = 10

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ClothingItemFileKey builds the object key for a clothing item image:
//
//	{userId}/clothing-items/{itemId}/{rand}_{original|modified}{ext}
//
// The random suffix keeps re-uploads from colliding with stale CDN entries.
func ClothingItemFileKey(userID, itemID, imageRole, ext string) string {
	return fmt.Sprintf("%s/clothing-items/%s/%s_%s%s", userID, itemID, randomAlphanumeric(keySuffixLen), imageRole, ext)
}

// OutfitFileKey builds the object key for an outfit image:
//
//	{userId}/outfits/{outfitId}/{rand}_outfit{ext}
func OutfitFileKey(userID, outfitID, ext string) string {
	return fmt.Sprintf("%s/outfits/%s/%s_outfit%s", userID, outfitID, randomAlphanumeric(keySuffixLen), ext)
}

// FileExtension returns the extension of an uploaded filename including the
// leading dot, defaulting to ".jpg" when the name carries none.
func FileExtension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return ".jpg"
	}
	return fileName[idx:]
}

func randomAlphanumeric(n int) string {
	buf := make([]byte, n)
	// rand.Read never fails on supported platforms; fall back to 'x' bytes
	// rather than panicking in a request path.
	if _, err := rand.Read(buf); err != nil {
		return strings.Repeat("x", n)
	}
	for i, b := range buf {
		buf[i] = alphanumerics[int(b)%len(alphanumerics)]
	}
	return string(buf)
}
