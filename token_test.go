// token_test.go
//
// Copyright (C) 2025 Tom Verbeek
//
// Tests for the token minting scheme

package boggle

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"testing"
)

func TestTokenDerivation(t *testing.T) {
	vault := NewTokenVault()

	// recompute the management token by hand: HMAC-SHA1 keyed by
	// SHA1(salt || server key) over the joined arguments, hex
	// encoded, every other digit
	hmacKey := sha1.Sum(append([]byte("sessman"), vault.ServerKey()...))
	mac := hmac.New(sha1.New, hmacKey[:])
	mac.Write([]byte("17" + "cafebabe"))
	digest := hex.EncodeToString(mac.Sum(nil))
	want := make([]byte, 0, 20)
	for i := 0; i < len(digest); i += 2 {
		want = append(want, digest[i])
	}

	got := vault.MgmtToken(17, "cafebabe")
	if got != string(want) {
		t.Errorf("MgmtToken = %q, want %q", got, want)
	}
}

func TestTokenShape(t *testing.T) {
	vault := NewTokenVault()
	tokens := []string{
		vault.MgmtToken(1, "aabbccdd"),
		vault.InviteToken(1, "aabbccdd"),
		vault.PlayerToken(1, "aabbccdd", 2),
	}
	for _, tok := range tokens {
		if len(tok) != 20 {
			t.Errorf("token %q has length %d, want 20", tok, len(tok))
		}
	}
	// the three families must not collide for the same session
	if tokens[0] == tokens[1] || tokens[0] == tokens[2] || tokens[1] == tokens[2] {
		t.Errorf("token families collide: %v", tokens)
	}
}

func TestTokenBinding(t *testing.T) {
	vault := NewTokenVault()
	base := vault.PlayerToken(1, "aabbccdd", 2)
	if vault.PlayerToken(2, "aabbccdd", 2) == base {
		t.Errorf("player token must bind to the session id")
	}
	if vault.PlayerToken(1, "ddccbbaa", 2) == base {
		t.Errorf("player token must bind to the pepper")
	}
	if vault.PlayerToken(1, "aabbccdd", 3) == base {
		t.Errorf("player token must bind to the player id")
	}
	// a fresh vault invalidates everything
	if NewTokenVault().PlayerToken(1, "aabbccdd", 2) == base {
		t.Errorf("tokens must not survive a key rotation")
	}
}

func TestCheckToken(t *testing.T) {
	vault := NewTokenVault()
	tok := vault.InviteToken(9, "00112233")
	if !CheckToken(tok, tok) {
		t.Errorf("canonical token rejected")
	}
	if CheckToken(tok[:19]+"0", tok) && tok[19] != '0' {
		t.Errorf("tampered token accepted")
	}
	if CheckToken("", tok) {
		t.Errorf("empty token accepted")
	}
}

func TestNewPepper(t *testing.T) {
	pepper := NewPepper()
	if len(pepper) != 16 {
		t.Errorf("pepper %q has length %d, want 16 hex digits", pepper, len(pepper))
	}
	if _, err := hex.DecodeString(pepper); err != nil {
		t.Errorf("pepper %q is not hex: %v", pepper, err)
	}
	if NewPepper() == pepper {
		t.Errorf("peppers must be random")
	}
}
