package ir

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// DomainFamily prefixes family hashes. The version suffix allows a future
// algorithm change without colliding with stored hashes.
const DomainFamily = "telescope/family/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + part1 + 0x00 + part2 ...)
// The null byte separators keep ("ab", "c") and ("a", "bc") apart.
func hashWithDomain(domain string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write([]byte{0x00})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FamilyHash groups related entries, for example every occurrence of the
// same exception (file and line) or the same SQL statement. Parts are
// NFC normalized so visually identical input hashes identically.
func FamilyHash(entryType string, parts ...string) string {
	normalized := make([]string, 0, len(parts)+1)
	normalized = append(normalized, norm.NFC.String(entryType))
	for _, p := range parts {
		normalized = append(normalized, norm.NFC.String(p))
	}
	return hashWithDomain(DomainFamily, normalized...)
}
