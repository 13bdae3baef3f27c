package domain

import "time"

// Vault is the escrow account of exactly one match. Stakes land here at
// create/join time and leave only through claims.
type Vault struct {
	MatchID   string    `json:"match_id"`
	Asset     string    `json:"asset"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry kinds recorded against a vault.
const (
	EntryStake  = "stake"
	EntryPayout = "payout"
	EntryRefund = "refund"
	EntryFee    = "fee"
)

// VaultEntry is one ledger line against a match vault. Positive amounts flow
// into the vault, negative amounts out of it; a fully drained vault's entries
// net to zero.
type VaultEntry struct {
	ID        int64     `json:"id"`
	MatchID   string    `json:"match_id"`
	Account   string    `json:"account"`
	Amount    int64     `json:"amount"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
