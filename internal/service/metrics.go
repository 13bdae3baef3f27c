package service

import "github.com/prometheus/client_golang/prometheus"

var (
	MatchesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_matches_created_total",
			Help: "Matches created, by game kind",
		},
		[]string{"kind"},
	)
	MatchesSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_matches_settled_total",
			Help: "Matches reaching a terminal state, by kind and result",
		},
		[]string{"kind", "result"},
	)
	ClaimsPaid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escrow_claims_paid_total",
			Help: "Successful claims, by entry kind",
		},
		[]string{"kind"},
	)
	PayoutVolume = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "escrow_payout_volume_total",
			Help: "Sum of all amounts paid out of vaults",
		},
	)
)

func init() {
	prometheus.MustRegister(MatchesCreated, MatchesSettled, ClaimsPaid, PayoutVolume)
}
