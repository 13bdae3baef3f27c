package game

import (
	"crypto/sha256"
	"encoding/binary"

	"pvp_escrow/internal/domain"
)

// DefaultMaxConsecutiveDraws caps replay loops before a forced resolution.
const DefaultMaxConsecutiveDraws = 5

const roundStateVersion = 1

// RoundRecord is one settled round in a best-of-N match.
type RoundRecord struct {
	Number    uint8
	Result    domain.Outcome
	Timestamp int64
	Moves     []byte
}

// RoundManager tracks best-of-N progress. Its encoded snapshot is stored as
// opaque bytes on the match row between rounds; the layout is stable.
type RoundManager struct {
	TotalRounds         uint8
	RoundsPlayed        uint8
	CreatorScore        uint8
	OpponentScore       uint8
	RoundsToWin         uint8
	ConsecutiveDraws    uint8
	MaxConsecutiveDraws uint8
	History             []RoundRecord
}

// RoundVerdict says what a just-settled round means for the match.
type RoundVerdict int

const (
	// RoundContinue means the match goes on; a fresh round starts.
	RoundContinue RoundVerdict = iota
	// RoundDrawReplay means the drawn round is replayed without consuming
	// one of the N rounds.
	RoundDrawReplay
	// RoundMatchWon means a player reached the required score.
	RoundMatchWon
	// RoundForced means the draw cap was exceeded and the match must settle
	// by forced resolution.
	RoundForced
)

func NewRoundManager(totalRounds uint8) *RoundManager {
	if totalRounds == 0 {
		totalRounds = 1
	}
	return &RoundManager{
		TotalRounds:         totalRounds,
		RoundsToWin:         totalRounds/2 + 1,
		MaxConsecutiveDraws: DefaultMaxConsecutiveDraws,
	}
}

// ProcessRound records a settled round and returns the verdict.
func (rm *RoundManager) ProcessRound(result domain.Outcome, ts int64, moves []byte) RoundVerdict {
	rm.RoundsPlayed++
	rm.History = append(rm.History, RoundRecord{
		Number:    rm.RoundsPlayed,
		Result:    result,
		Timestamp: ts,
		Moves:     moves,
	})

	switch result {
	case domain.OutcomeCreator:
		rm.CreatorScore++
		rm.ConsecutiveDraws = 0
	case domain.OutcomeOpponent:
		rm.OpponentScore++
		rm.ConsecutiveDraws = 0
	case domain.OutcomeDraw:
		rm.ConsecutiveDraws++
		if rm.ConsecutiveDraws > rm.MaxConsecutiveDraws {
			return RoundForced
		}
		// a drawn round does not consume one of the N rounds
		rm.RoundsPlayed--
		return RoundDrawReplay
	}

	if rm.CreatorScore >= rm.RoundsToWin || rm.OpponentScore >= rm.RoundsToWin {
		return RoundMatchWon
	}
	if rm.RoundsPlayed >= rm.TotalRounds {
		if rm.CreatorScore == rm.OpponentScore {
			return RoundForced
		}
		return RoundMatchWon
	}
	return RoundContinue
}

// Leader returns the side currently ahead on score.
func (rm *RoundManager) Leader() domain.Outcome {
	switch {
	case rm.CreatorScore > rm.OpponentScore:
		return domain.OutcomeCreator
	case rm.OpponentScore > rm.CreatorScore:
		return domain.OutcomeOpponent
	}
	return domain.OutcomeDraw
}

// ForcedWinner picks a winner when regular play cannot decide the match. The
// side ahead on score wins outright; on level scores the winner comes from
// the parity of SHA-256 over the match id, every round timestamp and both
// scores. Neither player controls all of those inputs, and anyone holding
// the round history can recompute the result.
func (rm *RoundManager) ForcedWinner(matchID string) domain.Outcome {
	if lead := rm.Leader(); lead != domain.OutcomeDraw {
		return lead
	}

	h := sha256.New()
	h.Write([]byte(matchID))
	var tsBuf [8]byte
	for _, rec := range rm.History {
		binary.LittleEndian.PutUint64(tsBuf[:], uint64(rec.Timestamp))
		h.Write(tsBuf[:])
	}
	h.Write([]byte{rm.CreatorScore, rm.OpponentScore})

	if h.Sum(nil)[0]&1 == 0 {
		return domain.OutcomeCreator
	}
	return domain.OutcomeOpponent
}

// Encode serializes the manager to its stable binary form:
// version, totals, scores, counters, a two-byte record count LE, then one
// record per settled round (number, result, timestamp LE, move length, move
// bytes). Draw replays append history without consuming rounds, so the record
// count can exceed what fits in one byte.
func (rm *RoundManager) Encode() []byte {
	buf := make([]byte, 0, 10+len(rm.History)*12)
	buf = append(buf,
		roundStateVersion,
		rm.TotalRounds,
		rm.RoundsPlayed,
		rm.CreatorScore,
		rm.OpponentScore,
		rm.RoundsToWin,
		rm.ConsecutiveDraws,
		rm.MaxConsecutiveDraws,
	)
	var cntBuf [2]byte
	binary.LittleEndian.PutUint16(cntBuf[:], uint16(len(rm.History)))
	buf = append(buf, cntBuf[:]...)
	var tsBuf [8]byte
	for _, rec := range rm.History {
		buf = append(buf, rec.Number, byte(rec.Result))
		binary.LittleEndian.PutUint64(tsBuf[:], uint64(rec.Timestamp))
		buf = append(buf, tsBuf[:]...)
		buf = append(buf, uint8(len(rec.Moves)))
		buf = append(buf, rec.Moves...)
	}
	return buf
}

// DecodeRoundState parses bytes produced by Encode.
func DecodeRoundState(data []byte) (*RoundManager, error) {
	if len(data) < 10 || data[0] != roundStateVersion {
		return nil, domain.ErrCorruptRoundState
	}
	rm := &RoundManager{
		TotalRounds:         data[1],
		RoundsPlayed:        data[2],
		CreatorScore:        data[3],
		OpponentScore:       data[4],
		RoundsToWin:         data[5],
		ConsecutiveDraws:    data[6],
		MaxConsecutiveDraws: data[7],
	}
	n := int(binary.LittleEndian.Uint16(data[8:10]))
	off := 10
	for i := 0; i < n; i++ {
		if off+11 > len(data) {
			return nil, domain.ErrCorruptRoundState
		}
		rec := RoundRecord{
			Number:    data[off],
			Result:    domain.Outcome(data[off+1]),
			Timestamp: int64(binary.LittleEndian.Uint64(data[off+2 : off+10])),
		}
		moveLen := int(data[off+10])
		off += 11
		if off+moveLen > len(data) {
			return nil, domain.ErrCorruptRoundState
		}
		rec.Moves = append([]byte(nil), data[off:off+moveLen]...)
		off += moveLen
		rm.History = append(rm.History, rec)
	}
	if off != len(data) {
		return nil, domain.ErrCorruptRoundState
	}
	return rm, nil
}
