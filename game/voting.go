package game

import (
	"sort"
	"time"

	"chaosroom/protocol"
)

// Tally is the closed-window count of one voting cycle.
type Tally struct {
	TopID      string
	TopCount   int
	TotalVotes int
}

// Majority is measured against votes cast, not against alive players.
func (t Tally) Majority() bool {
	return t.TopCount*2 > t.TotalVotes
}

// tallyVotes counts ballots in voter-id order; on a tie the first target to
// reach the max count keeps the top spot.
func tallyVotes(votes map[string]string) Tally {
	voters := make([]string, 0, len(votes))
	for v := range votes {
		voters = append(voters, v)
	}
	sort.Strings(voters)

	counts := make(map[string]int, len(votes))
	var order []string
	for _, v := range voters {
		target := votes[v]
		if _, seen := counts[target]; !seen {
			order = append(order, target)
		}
		counts[target]++
	}

	t := Tally{TotalVotes: len(votes)}
	for _, id := range order {
		if counts[id] > t.TopCount {
			t.TopID = id
			t.TopCount = counts[id]
		}
	}
	return t
}

func (w *World) maybeRunVoting(now time.Time) {
	v := &w.State.Voting
	if !v.Enabled || w.State.Round != Round1 {
		return
	}

	if !v.Active && !now.Before(v.NextAt) {
		w.openVote(now)
	}
	if v.Active && !now.Before(v.EndsAt) {
		w.closeVote(now)
	}
}

func (w *World) openVote(now time.Time) {
	v := &w.State.Voting
	v.Active = true
	v.CycleID++
	v.EndsAt = now.Add(VoteWindow)
	v.Votes = make(map[string]string)
	w.State.Paused = true

	alive := w.AlivePlayers()
	targets := make([]protocol.VoteTarget, 0, len(alive))
	for _, p := range alive {
		targets = append(targets, protocol.VoteTarget{ID: p.ID, Name: p.Name})
	}
	w.emit(protocol.MsgVoteStarted, "", protocol.VoteStarted{
		CycleID: v.CycleID,
		EndsAt:  millis(v.EndsAt),
		Players: targets,
	})
}

// closeVote resolves the cycle. Only a majority on the true saboteur spares
// the group; that unmasks the saboteur and forces a rotation. Every other
// outcome eliminates a random alive player.
func (w *World) closeVote(now time.Time) {
	v := &w.State.Voting
	t := tallyVotes(v.Votes)
	saboteurID := w.State.Saboteur.CurrentID

	var eliminatedID string
	if t.Majority() && t.TopID != "" && t.TopID == saboteurID {
		w.clearSaboteur()
		w.State.Saboteur.NextRotateAt = now
	} else if alive := w.AlivePlayers(); len(alive) > 1 {
		victim := alive[w.rng.IntN(len(alive))]
		if w.Eliminate(victim, ReasonVoteRandom, "", now) {
			eliminatedID = victim.ID
		}
	}

	w.emit(protocol.MsgVoteResult, "", protocol.VoteResult{
		TopID:             t.TopID,
		TopCount:          t.TopCount,
		TotalVotes:        t.TotalVotes,
		CurrentSaboteurID: saboteurID,
		EliminatedID:      eliminatedID,
	})

	v.Active = false
	v.Votes = make(map[string]string)
	v.NextAt = now.Add(VoteEvery)
	w.State.Paused = false
}

// SubmitVote records one ballot per voter per cycle.
func (w *World) SubmitVote(voterID, targetID string) error {
	if !w.State.Voting.Active {
		return ErrVotingClosed
	}
	voter, ok := w.Players[voterID]
	if !ok {
		return ErrPlayerNotFound
	}
	if !voter.Alive {
		return ErrNotAlive
	}
	if voter.LastVoteCycle == w.State.Voting.CycleID {
		return ErrAlreadyVoted
	}
	target, ok := w.Players[targetID]
	if !ok || !target.Alive {
		return ErrInvalidVote
	}
	w.State.Voting.Votes[voterID] = targetID
	voter.LastVoteCycle = w.State.Voting.CycleID
	return nil
}

// withdrawVotes drops ballots cast by or for a player who left. Voters whose
// ballot named the leaver may vote again this cycle.
func (w *World) withdrawVotes(playerID string) {
	v := &w.State.Voting
	delete(v.Votes, playerID)
	for voter, target := range v.Votes {
		if target != playerID {
			continue
		}
		delete(v.Votes, voter)
		if p, ok := w.Players[voter]; ok {
			p.LastVoteCycle = noCycleVote
		}
	}
}
