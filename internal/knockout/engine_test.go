package knockout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcri-rankings/internal/models"
)

func str(s string) *string { return &s }

func winner(id int64) *int64 { return &id }

func matchup(id int64, day int, a, b int64, w *int64) models.TeamKnockoutMatchup {
	return models.TeamKnockoutMatchup{
		MatchupID:    id,
		RaceHnd:      1000 + int64(day),
		RaceDate:     models.NewDate(2024, time.October, day),
		TeamAID:      a,
		TeamBID:      b,
		WinnerTeamID: w,
	}
}

func TestHeadToHead_Counts(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{
		matchup(1, 5, 10, 20, winner(10)),
		matchup(2, 12, 20, 10, winner(20)),
		matchup(3, 19, 10, 20, winner(10)),
		matchup(4, 19, 10, 30, winner(30)),
	}
	rows[0].TeamAName, rows[0].TeamBName = str("Alpha"), str("Beta")

	h2h, found := HeadToHead(10, 20, rows)
	require.True(t, found)

	assert.Equal(t, 3, h2h.TotalMatchups)
	assert.Equal(t, 2, h2h.TeamAWins)
	assert.Equal(t, 1, h2h.TeamBWins)
	assert.Equal(t, "2024-10-19", h2h.LatestMatchupDate.String())
	assert.Equal(t, int64(10), *h2h.LatestWinnerID)
	assert.Equal(t, "Alpha", *h2h.TeamAName)
	assert.Equal(t, "Beta", *h2h.TeamBName)
	assert.Equal(t, int64(3), h2h.Matchups[0].MatchupID)
}

func TestHeadToHead_Symmetric(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{
		matchup(1, 5, 10, 20, winner(10)),
		matchup(2, 12, 20, 10, winner(20)),
		matchup(3, 13, 20, 10, nil),
	}

	ab, _ := HeadToHead(10, 20, rows)
	ba, _ := HeadToHead(20, 10, rows)

	assert.Equal(t, ab.TotalMatchups, ba.TotalMatchups)
	assert.Equal(t, ab.TeamAWins, ba.TeamBWins)
	assert.Equal(t, ab.TeamBWins, ba.TeamAWins)
	assert.Equal(t, ab.LatestMatchupDate, ba.LatestMatchupDate)
	assert.Nil(t, ab.LatestWinnerID, "latest meeting had no winner")
}

func TestHeadToHead_SameDayTieBreak(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{
		matchup(41, 19, 10, 20, winner(20)),
		matchup(40, 19, 10, 20, winner(10)),
		matchup(39, 19, 20, 10, winner(10)),
	}

	h2h, found := HeadToHead(10, 20, rows)
	require.True(t, found)
	assert.Equal(t, int64(20), *h2h.LatestWinnerID)
	assert.Equal(t, []int64{41, 40, 39}, ids(h2h.Matchups))
}

func TestHeadToHead_NoHistory(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{matchup(1, 5, 10, 30, winner(10))}

	h2h, found := HeadToHead(10, 20, rows)
	assert.False(t, found)
	assert.Equal(t, 0, h2h.TotalMatchups)
	assert.Nil(t, h2h.LatestMatchupDate)
	assert.NotNil(t, h2h.Matchups)
}

func TestCommonOpponents(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{
		// A=10 vs C=30: A wins twice
		matchup(1, 1, 10, 30, winner(10)),
		matchup(2, 2, 30, 10, winner(10)),
		// B=20 vs C=30: B loses once, one row without winner
		matchup(3, 3, 20, 30, winner(30)),
		matchup(4, 4, 20, 30, nil),
		// A vs D=40 and B vs D: one win each
		matchup(5, 5, 10, 40, winner(10)),
		matchup(6, 6, 40, 20, winner(20)),
		// A vs E=50 only: not common
		matchup(7, 7, 10, 50, winner(50)),
		// A vs B directly: ignored
		matchup(8, 8, 10, 20, winner(20)),
	}
	rows[0].TeamBName = str("Gamma")

	got, found := CommonOpponents(10, 20, rows)
	require.True(t, found)

	assert.Equal(t, 2, got.TotalCommonOpponents)
	require.Len(t, got.CommonOpponents, 2)

	// C has 2 combined wins, D has 2 combined wins; C has more meetings
	c := got.CommonOpponents[0]
	assert.Equal(t, int64(30), c.OpponentID)
	assert.Equal(t, "Gamma", *c.OpponentName)
	assert.Equal(t, 2, c.TeamAWins)
	assert.Equal(t, 0, c.TeamALosses)
	assert.Equal(t, 2, c.TeamAMeets)
	assert.Equal(t, 0, c.TeamBWins)
	assert.Equal(t, 1, c.TeamBLosses)
	assert.Equal(t, 2, c.TeamBMeets)

	d := got.CommonOpponents[1]
	assert.Equal(t, int64(40), d.OpponentID)

	assert.Equal(t, "3-0", got.TeamARecordVsCommon)
	assert.Equal(t, "1-1", got.TeamBRecordVsCommon)

	for _, opp := range got.CommonOpponents {
		assert.NotEqual(t, int64(10), opp.OpponentID)
		assert.NotEqual(t, int64(20), opp.OpponentID)
	}
}

func TestCommonOpponents_OrderFallsBackToOpponentID(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{
		matchup(1, 1, 10, 60, nil),
		matchup(2, 1, 20, 60, nil),
		matchup(3, 2, 10, 50, nil),
		matchup(4, 2, 20, 50, nil),
	}

	got, found := CommonOpponents(10, 20, rows)
	require.True(t, found)
	assert.Equal(t, int64(50), got.CommonOpponents[0].OpponentID)
	assert.Equal(t, int64(60), got.CommonOpponents[1].OpponentID)
	assert.Equal(t, "0-0", got.TeamARecordVsCommon)
}

func TestCommonOpponents_None(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{
		matchup(1, 1, 10, 30, winner(10)),
		matchup(2, 2, 20, 40, winner(40)),
		matchup(3, 3, 10, 20, winner(10)),
	}

	got, found := CommonOpponents(10, 20, rows)
	assert.False(t, found)
	assert.Empty(t, got.CommonOpponents)
	assert.Equal(t, "0-0", got.TeamBRecordVsCommon)
}

func inGroup(m models.TeamKnockoutMatchup, fk int64, gender string) models.TeamKnockoutMatchup {
	m.RankGroupType = "D"
	m.RankGroupFK = fk
	m.GenderCode = gender
	return m
}

func TestCommonOpponents_SameGroupOnly(t *testing.T) {
	t.Run("different groups share nothing", func(t *testing.T) {
		rows := []models.TeamKnockoutMatchup{
			inGroup(matchup(1, 1, 10, 30, winner(10)), 2030, "M"),
			inGroup(matchup(2, 2, 20, 30, winner(30)), 2031, "F"),
		}

		got, found := CommonOpponents(10, 20, rows)
		assert.False(t, found)
		assert.Equal(t, 0, got.TotalCommonOpponents)
		assert.Equal(t, "0-0", got.TeamARecordVsCommon)
		assert.Equal(t, "0-0", got.TeamBRecordVsCommon)
	})

	t.Run("only the shared group is tallied", func(t *testing.T) {
		rows := []models.TeamKnockoutMatchup{
			inGroup(matchup(1, 1, 10, 30, winner(10)), 2030, "M"),
			inGroup(matchup(2, 2, 20, 30, winner(30)), 2030, "M"),
			inGroup(matchup(3, 3, 10, 30, winner(30)), 2030, "F"),
			inGroup(matchup(4, 4, 20, 30, winner(20)), 2031, "M"),
		}

		got, found := CommonOpponents(10, 20, rows)
		require.True(t, found)
		require.Len(t, got.CommonOpponents, 1)

		c := got.CommonOpponents[0]
		assert.Equal(t, int64(30), c.OpponentID)
		assert.Equal(t, 1, c.TeamAMeets)
		assert.Equal(t, 1, c.TeamAWins)
		assert.Equal(t, 1, c.TeamBMeets)
		assert.Equal(t, 1, c.TeamBLosses)
		assert.Equal(t, "1-0", got.TeamARecordVsCommon)
		assert.Equal(t, "0-1", got.TeamBRecordVsCommon)
	})

	t.Run("an opponent shared in two groups sums both", func(t *testing.T) {
		rows := []models.TeamKnockoutMatchup{
			inGroup(matchup(1, 1, 10, 30, winner(10)), 2030, "M"),
			inGroup(matchup(2, 2, 20, 30, winner(20)), 2030, "M"),
			inGroup(matchup(3, 3, 10, 30, winner(10)), 2030, "F"),
			inGroup(matchup(4, 4, 20, 30, winner(30)), 2030, "F"),
		}

		got, found := CommonOpponents(10, 20, rows)
		require.True(t, found)
		require.Len(t, got.CommonOpponents, 1)
		assert.Equal(t, 2, got.CommonOpponents[0].TeamAWins)
		assert.Equal(t, 2, got.CommonOpponents[0].TeamBMeets)
		assert.Equal(t, "2-0", got.TeamARecordVsCommon)
		assert.Equal(t, "1-1", got.TeamBRecordVsCommon)
	})
}

func TestWinPct(t *testing.T) {
	assert.Equal(t, 66.7, WinPct(2, 3))
	assert.Equal(t, 100.0, WinPct(4, 4))
	assert.Equal(t, 0.0, WinPct(0, 0))
	assert.Equal(t, 14.3, WinPct(1, 7))
}

func TestMeet(t *testing.T) {
	rows := []models.TeamKnockoutMatchup{matchup(1, 3, 10, 20, winner(10))}
	rows[0].MeetName = str("Pre-Nationals")

	m := Meet(1003, rows)
	assert.Equal(t, 1, m.TotalMatchups)
	assert.Equal(t, "Pre-Nationals", *m.MeetName)
	assert.Equal(t, "2024-10-03", m.RaceDate.String())

	empty := Meet(5, nil)
	assert.Equal(t, 0, empty.TotalMatchups)
	assert.Nil(t, empty.RaceDate)
	assert.NotNil(t, empty.Matchups)
}

func ids(rows []models.TeamKnockoutMatchup) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.MatchupID
	}
	return out
}
