package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProgram  = "rio/hrir/v1"
	DomainMembrane = "rio/membrane/v1"
	DomainUnit     = "rio/unit/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes the canonical JSON form of v under domain.
func ContentHash(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// ProgramHash identifies a program by its cells.
// Two compilations of the same source under the same options produce the
// same hash.
func ProgramHash(p *Program) (string, error) {
	return ContentHash(DomainProgram, p.Value())
}

// UnitID derives a stable identifier for a compiled unit from its session,
// its position within the session, and its program hash.
func UnitID(sessionID string, seq int64, programHash string) (string, error) {
	return ContentHash(DomainUnit, IRObject{
		"session_id":   IRString(sessionID),
		"seq":          IRInt(seq),
		"program_hash": IRString(programHash),
	})
}

// MustProgramHash is like ProgramHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProgramHash(p *Program) string {
	h, err := ProgramHash(p)
	if err != nil {
		panic(err)
	}
	return h
}
