// Package knockout derives head-to-head and common-opponent records from
// the pairwise matchup rows of one knockout ranking group.
package knockout

import (
	"fmt"
	"math"
	"sort"

	"xcri-rankings/internal/models"
)

// HeadToHead summarises every meeting between a and b. The second return is
// false when the two teams never met. Matchups are returned newest first;
// meetings on the same day are ordered by matchup id, highest first, which
// also decides the latest winner.
func HeadToHead(a, b int64, rows []models.TeamKnockoutMatchup) (models.HeadToHead, bool) {
	h2h := models.HeadToHead{
		TeamAID:  a,
		TeamBID:  b,
		Matchups: []models.TeamKnockoutMatchup{},
	}

	for i := range rows {
		m := rows[i]
		if !(m.Involves(a) && m.Involves(b)) || a == b {
			continue
		}
		h2h.Matchups = append(h2h.Matchups, m)
		switch {
		case m.WonBy(a):
			h2h.TeamAWins++
		case m.WonBy(b):
			h2h.TeamBWins++
		}
		if h2h.TeamAName == nil {
			h2h.TeamAName = m.NameOf(a)
		}
		if h2h.TeamBName == nil {
			h2h.TeamBName = m.NameOf(b)
		}
	}

	h2h.TotalMatchups = len(h2h.Matchups)
	if h2h.TotalMatchups == 0 {
		return h2h, false
	}

	SortNewestFirst(h2h.Matchups)
	latest := h2h.Matchups[0]
	date := latest.RaceDate
	h2h.LatestMatchupDate = &date
	h2h.LatestWinnerID = latest.WinnerTeamID

	return h2h, true
}

// SortNewestFirst orders matchups by race date then matchup id, both descending
func SortNewestFirst(rows []models.TeamKnockoutMatchup) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].RaceDate.Equal(rows[j].RaceDate.Time) {
			return rows[i].RaceDate.After(rows[j].RaceDate.Time)
		}
		return rows[i].MatchupID > rows[j].MatchupID
	})
}

type tally struct {
	wins, losses, meetings int
}

func (t *tally) add(m *models.TeamKnockoutMatchup, team, opponent int64) {
	t.meetings++
	switch {
	case m.WonBy(team):
		t.wins++
	case m.WonBy(opponent):
		t.losses++
	}
}

// partition keys an opponent's tally by the ranking group and gender of the
// matchup. A common opponent must have met both teams within one partition.
type partition struct {
	opponent  int64
	groupType string
	groupFK   int64
	gender    string
}

func partitionOf(m *models.TeamKnockoutMatchup, opponent int64) partition {
	return partition{opponent: opponent, groupType: m.RankGroupType, groupFK: m.RankGroupFK, gender: m.GenderCode}
}

// CommonOpponents compares a and b through every team both have met in the
// same ranking group and gender. Rows between a and b themselves are ignored.
// A row without a winner counts as a meeting only. The second return is false
// when no opponent is shared.
func CommonOpponents(a, b int64, rows []models.TeamKnockoutMatchup) (models.CommonOpponentsAnalysis, bool) {
	out := models.CommonOpponentsAnalysis{
		TeamAID:         a,
		TeamBID:         b,
		CommonOpponents: []models.CommonOpponent{},
	}

	vsA := map[partition]*tally{}
	vsB := map[partition]*tally{}
	names := map[int64]*string{}

	for i := range rows {
		m := &rows[i]
		inA, inB := m.Involves(a), m.Involves(b)

		if inA && out.TeamAName == nil {
			out.TeamAName = m.NameOf(a)
		}
		if inB && out.TeamBName == nil {
			out.TeamBName = m.NameOf(b)
		}

		switch {
		case inA && inB:
			continue
		case inA:
			c := m.Opponent(a)
			if c == a {
				continue
			}
			record(vsA, partitionOf(m, c)).add(m, a, c)
			if names[c] == nil {
				names[c] = m.NameOf(c)
			}
		case inB:
			c := m.Opponent(b)
			if c == b {
				continue
			}
			record(vsB, partitionOf(m, c)).add(m, b, c)
			if names[c] == nil {
				names[c] = m.NameOf(c)
			}
		}
	}

	shared := map[int64]*models.CommonOpponent{}
	for key, ta := range vsA {
		tb, ok := vsB[key]
		if !ok || key.opponent == a || key.opponent == b {
			continue
		}
		co := shared[key.opponent]
		if co == nil {
			co = &models.CommonOpponent{OpponentID: key.opponent, OpponentName: names[key.opponent]}
			shared[key.opponent] = co
		}
		co.TeamAWins += ta.wins
		co.TeamALosses += ta.losses
		co.TeamAMeets += ta.meetings
		co.TeamBWins += tb.wins
		co.TeamBLosses += tb.losses
		co.TeamBMeets += tb.meetings
	}

	var aWins, aLosses, bWins, bLosses int
	for _, co := range shared {
		out.CommonOpponents = append(out.CommonOpponents, *co)
		aWins += co.TeamAWins
		aLosses += co.TeamALosses
		bWins += co.TeamBWins
		bLosses += co.TeamBLosses
	}

	sort.Slice(out.CommonOpponents, func(i, j int) bool {
		x, y := out.CommonOpponents[i], out.CommonOpponents[j]
		if xw, yw := x.TeamAWins+x.TeamBWins, y.TeamAWins+y.TeamBWins; xw != yw {
			return xw > yw
		}
		if xm, ym := x.TeamAMeets+x.TeamBMeets, y.TeamAMeets+y.TeamBMeets; xm != ym {
			return xm > ym
		}
		return x.OpponentID < y.OpponentID
	})

	out.TotalCommonOpponents = len(out.CommonOpponents)
	out.TeamARecordVsCommon = Record(aWins, aLosses)
	out.TeamBRecordVsCommon = Record(bWins, bLosses)

	return out, out.TotalCommonOpponents > 0
}

func record(m map[partition]*tally, key partition) *tally {
	t, ok := m[key]
	if !ok {
		t = &tally{}
		m[key] = t
	}
	return t
}

// Record formats a win-loss pair as "W-L"
func Record(wins, losses int) string {
	return fmt.Sprintf("%d-%d", wins, losses)
}

// WinPct is wins over total as a percentage rounded to one decimal place
func WinPct(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(wins)*1000/float64(total)) / 10
}

// Meet summarises the matchups recorded at one race. Rows are expected in
// the order they should be listed.
func Meet(raceHnd int64, rows []models.TeamKnockoutMatchup) models.MeetMatchups {
	out := models.MeetMatchups{
		RaceHnd:       raceHnd,
		TotalMatchups: len(rows),
		Matchups:      rows,
	}
	if out.Matchups == nil {
		out.Matchups = []models.TeamKnockoutMatchup{}
	}
	if len(rows) > 0 {
		date := rows[0].RaceDate
		out.MeetName = rows[0].MeetName
		out.RaceDate = &date
	}
	return out
}
