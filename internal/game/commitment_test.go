package game

import (
	"strings"
	"testing"
)

func testKey(fill byte) [PlayerKeySize]byte {
	var k [PlayerKeySize]byte
	for i := range k {
		k[i] = fill
	}
	return k
}

func testSalt(fill byte) [SaltSize]byte {
	var s [SaltSize]byte
	for i := range s {
		s[i] = fill
	}
	return s
}

func TestCommitmentRoundTrip(t *testing.T) {
	key := testKey(0xAB)
	salt := testSalt(0x11)

	c := ComputeCommitment(ChoicePaper, salt, key, 42)
	if !VerifyCommitment(c[:], ChoicePaper, salt, key, 42) {
		t.Fatal("honest reveal did not verify")
	}
}

func TestCommitmentRejectsMutations(t *testing.T) {
	key := testKey(0xAB)
	salt := testSalt(0x11)
	c := ComputeCommitment(ChoiceRock, salt, key, 7)

	if VerifyCommitment(c[:], ChoicePaper, salt, key, 7) {
		t.Error("different choice verified")
	}

	badSalt := salt
	badSalt[0] ^= 0x01
	if VerifyCommitment(c[:], ChoiceRock, badSalt, key, 7) {
		t.Error("single-bit salt mutation verified")
	}

	if VerifyCommitment(c[:], ChoiceRock, salt, key, 8) {
		t.Error("different nonce verified")
	}

	otherKey := testKey(0xCD)
	if VerifyCommitment(c[:], ChoiceRock, salt, otherKey, 7) {
		t.Error("digest replayed under another player's key verified")
	}

	badDigest := append([]byte(nil), c[:]...)
	badDigest[31] ^= 0x80
	if VerifyCommitment(badDigest, ChoiceRock, salt, key, 7) {
		t.Error("mutated digest verified")
	}
}

func TestCommitmentWrongLength(t *testing.T) {
	key := testKey(1)
	salt := testSalt(2)
	if VerifyCommitment([]byte{1, 2, 3}, ChoiceRock, salt, key, 0) {
		t.Fatal("short digest verified")
	}
	if VerifyCommitment(nil, ChoiceRock, salt, key, 0) {
		t.Fatal("nil digest verified")
	}
}

func TestPlayerKeyBytes(t *testing.T) {
	hexKey := strings.Repeat("ab", PlayerKeySize)
	key, err := PlayerKeyBytes(hexKey)
	if err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if key[0] != 0xAB || key[31] != 0xAB {
		t.Fatalf("unexpected decode: %x", key)
	}

	for _, bad := range []string{"", "zz", strings.Repeat("ab", 31), strings.Repeat("ab", 33)} {
		if _, err := PlayerKeyBytes(bad); err == nil {
			t.Errorf("key %q accepted", bad)
		}
	}
}
