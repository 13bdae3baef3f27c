package game

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"

	"pvp_escrow/internal/domain"
)

const (
	CommitmentSize = 32
	SaltSize       = 32
	PlayerKeySize  = 32
	NonceSize      = 8
)

// ComputeCommitment builds the digest binding a hidden choice to the player
// who made it: SHA-256(choice ‖ salt ‖ playerKey ‖ nonce LE). Folding the
// committing player's own key into the preimage stops one side from replaying
// the other's digest; the nonce stops replay across matches with a reused salt.
func ComputeCommitment(choice byte, salt [SaltSize]byte, playerKey [PlayerKeySize]byte, nonce uint64) [CommitmentSize]byte {
	h := sha256.New()
	h.Write([]byte{choice})
	h.Write(salt[:])
	h.Write(playerKey[:])

	var nb [NonceSize]byte
	binary.LittleEndian.PutUint64(nb[:], nonce)
	h.Write(nb[:])

	var out [CommitmentSize]byte
	copy(out[:], h.Sum(nil))
	return out
}

// VerifyCommitment recomputes the digest from the revealed preimage and
// compares in constant time.
func VerifyCommitment(commitment []byte, choice byte, salt [SaltSize]byte, playerKey [PlayerKeySize]byte, nonce uint64) bool {
	if len(commitment) != CommitmentSize {
		return false
	}
	want := ComputeCommitment(choice, salt, playerKey, nonce)
	return subtle.ConstantTimeCompare(commitment, want[:]) == 1
}

// PlayerKeyBytes decodes the canonical hex form of a player key.
func PlayerKeyBytes(key string) ([PlayerKeySize]byte, error) {
	var out [PlayerKeySize]byte
	raw, err := hex.DecodeString(key)
	if err != nil || len(raw) != PlayerKeySize {
		return out, domain.ErrInvalidPlayerKey
	}
	copy(out[:], raw)
	return out, nil
}
