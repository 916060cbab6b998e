// token.go
//
// Copyright (C) 2025 Tom Verbeek
//
// This file implements the token minting scheme that authorises all
// session operations without any server-held session state. Tokens
// are truncated HMAC-SHA1 values over the session identity, keyed by
// a process-wide secret that is generated at startup and never
// persisted: restarting the server invalidates every outstanding
// token, which matches the truncation of the session table on boot.

package boggle

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

// Token salts, one per token family
const (
	saltMgmt   = "sessman"
	saltInvite = "session"
	saltPlayer = "player"
)

// TokenVault mints and verifies tokens under the process-wide key
type TokenVault struct {
	serverKey []byte
}

// NewTokenVault generates a fresh 32-byte secret key
func NewTokenVault() *TokenVault {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		// crypto/rand failing means the process cannot mint any
		// token at all; nothing sensible to do but stop
		panic("token vault: " + err.Error())
	}
	return &TokenVault{serverKey: key}
}

// ServerKey exposes the secret for round-seed derivation
func (v *TokenVault) ServerKey() []byte {
	return v.serverKey
}

// saltedToken derives a 20-character token: HMAC-SHA1 over the
// concatenated arguments, keyed by SHA1(salt || server key), hex
// encoded and thinned to every other digit.
func (v *TokenVault) saltedToken(salt string, args ...string) string {
	hmacKey := sha1.Sum(append([]byte(salt), v.serverKey...))
	mac := hmac.New(sha1.New, hmacKey[:])
	mac.Write([]byte(strings.Join(args, "")))
	digest := hex.EncodeToString(mac.Sum(nil))
	token := make([]byte, 0, len(digest)/2)
	for i := 0; i < len(digest); i += 2 {
		token = append(token, digest[i])
	}
	return string(token)
}

// MgmtToken authorises session management operations
func (v *TokenVault) MgmtToken(sessionID int64, pepper string) string {
	return v.saltedToken(saltMgmt, strconv.FormatInt(sessionID, 10), pepper)
}

// InviteToken authorises joining a session
func (v *TokenVault) InviteToken(sessionID int64, pepper string) string {
	return v.saltedToken(saltInvite, strconv.FormatInt(sessionID, 10), pepper)
}

// PlayerToken authorises one player's play operations
func (v *TokenVault) PlayerToken(sessionID int64, pepper string, playerID int64) string {
	return v.saltedToken(
		saltPlayer,
		strconv.FormatInt(sessionID, 10),
		pepper,
		strconv.FormatInt(playerID, 10),
	)
}

// CheckToken compares a presented token against the canonical one
// in constant time
func CheckToken(presented, canonical string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(canonical)) == 1
}

// NewPepper mints the per-session random pepper: 8 bytes, hex encoded
func NewPepper() string {
	pepper := make([]byte, 8)
	if _, err := rand.Read(pepper); err != nil {
		panic("pepper: " + err.Error())
	}
	return hex.EncodeToString(pepper)
}
