package domain

import "time"

// AuditLog records one engine operation against a match for later review,
// most usefully while resolving disputes.
type AuditLog struct {
	ID        int64          `json:"id"`
	MatchID   *string        `json:"match_id,omitempty"`
	Actor     *string        `json:"actor,omitempty"`
	Action    string         `json:"action"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Audit actions.
const (
	AuditActionCreate         = "match_create"
	AuditActionJoin           = "match_join"
	AuditActionCommit         = "round_commit"
	AuditActionReveal         = "move_reveal"
	AuditActionMove           = "move_submit"
	AuditActionSettle         = "match_settle"
	AuditActionClaim          = "winnings_claim"
	AuditActionCancel         = "match_cancel"
	AuditActionTimeout        = "match_timeout"
	AuditActionDispute        = "match_dispute"
	AuditActionResolveDispute = "dispute_resolve"
	AuditActionRegistryToggle = "registry_toggle"
)
