package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcri-rankings/internal/models"
)

var athleteColumns = Columns{
	Alias:      "a",
	Search:     []string{"a.athlete_name_first", "a.athlete_name_last", "a.team_name"},
	Region:     "t.regl_group_name",
	Conference: "t.conf_group_name",
	Races:      "a.races_count",
}

func intPtr(v int) *int { return &v }

func TestSelect_AthleteScenario(t *testing.T) {
	c, err := NewContext(2024, intPtr(2030), "m", "", "", "")
	require.NoError(t, err)

	p := Select(c, Filter{}, athleteColumns)
	suffix, args := p.Paged(Page{Limit: 25, Offset: 0})

	assert.Equal(t,
		" WHERE a.season_year = ? AND a.scoring_group = ? AND a.algorithm_type = ? AND a.checkpoint_date IS NULL AND a.division_code = ? AND a.gender_code = ?",
		p.Where())
	assert.Equal(t, " LIMIT ? OFFSET ?", suffix)
	assert.Equal(t, []interface{}{2024, "division", "light", 2030, "M", 25, 0}, args)
	assert.Equal(t, []interface{}{2024, "division", "light", 2030, "M"}, p.Args(), "count args must equal page args minus limit/offset")
}

func TestSelect_CheckpointIsDisjointFromLive(t *testing.T) {
	live := Select(Live(2024), Filter{}, Columns{})
	assert.Contains(t, live.Where(), "checkpoint_date IS NULL")
	assert.NotContains(t, live.Where(), "checkpoint_date = ?")

	snap := Select(AtCheckpoint(models.NewDate(2024, 10, 15)), Filter{}, Columns{})
	assert.Contains(t, snap.Where(), "checkpoint_date = ?")
	assert.NotContains(t, snap.Where(), "IS NULL")
	assert.Equal(t, []interface{}{2024, "division", "light", "2024-10-15"}, snap.Args())
}

func TestSelect_ZeroSeasonIsUnconstrained(t *testing.T) {
	c := AtCheckpoint(models.NewDate(2024, 11, 2))
	c.SeasonYear = 0
	gender := "F"
	c.Gender = &gender

	p := Select(c, Filter{}, Columns{Alias: "a"})
	assert.Equal(t, " WHERE a.scoring_group = ? AND a.algorithm_type = ? AND a.checkpoint_date = ? AND a.gender_code = ?", p.Where())
	assert.Equal(t, []interface{}{"division", "light", "2024-11-02", "F"}, p.Args())
}

func TestSelect_Refinements(t *testing.T) {
	c := Live(2025)
	f := Filter{Search: "smith", Region: "West", Conference: "Pac-12", MinRaces: intPtr(3)}

	p := Select(c, f, athleteColumns)

	assert.Equal(t,
		" WHERE a.season_year = ? AND a.scoring_group = ? AND a.algorithm_type = ? AND a.checkpoint_date IS NULL"+
			" AND (a.athlete_name_first ILIKE ? OR a.athlete_name_last ILIKE ? OR a.team_name ILIKE ?)"+
			" AND t.regl_group_name = ? AND t.conf_group_name = ? AND a.races_count >= ?",
		p.Where())
	assert.Equal(t, []interface{}{2025, "division", "light", "%smith%", "%smith%", "%smith%", "West", "Pac-12", 3}, p.Args())
}

func TestSelect_RefinementsIgnoredWithoutColumns(t *testing.T) {
	p := Select(Live(2025), Filter{Search: "x", Region: "West", MinRaces: intPtr(2)}, Columns{Alias: "c"})
	assert.Equal(t, 4, p.Len())
}

func TestSelect_WithoutAlgorithm(t *testing.T) {
	c, err := NewContext(2024, nil, "F", "region_7", "", "heavy")
	require.NoError(t, err)

	p := Select(c, Filter{}, Columns{Alias: "c"}, WithoutAlgorithm())

	assert.Equal(t, " WHERE c.season_year = ? AND c.scoring_group = ? AND c.checkpoint_date IS NULL AND c.gender_code = ?", p.Where())
	assert.Equal(t, []interface{}{2024, "region_7", "F"}, p.Args())
}

func TestSelect_Deterministic(t *testing.T) {
	c, err := NewContext(2024, intPtr(2031), "F", "conference_12", "2024-11-01", "light")
	require.NoError(t, err)
	f := Filter{Search: "ann", MinRaces: intPtr(2)}

	first := Select(c, f, athleteColumns)
	second := Select(c, f, athleteColumns)
	assert.Equal(t, first.Where(), second.Where())
	assert.Equal(t, first.Args(), second.Args())
}

func TestSelect_SearchEscapesWildcards(t *testing.T) {
	p := Select(Live(2024), Filter{Search: "100%_a"}, Columns{Search: []string{"team_name"}})
	args := p.Args()
	assert.Equal(t, `%100\%\_a%`, args[len(args)-1])
}

func TestSelectGroup(t *testing.T) {
	fk := int64(2030)
	g, err := NewGroupContext(2025, "d", &fk, "m", "")
	require.NoError(t, err)

	p := SelectGroup(g, "ko", "state")
	assert.Equal(t,
		" WHERE ko.season_year = ? AND ko.rank_group_type = ? AND ko.rank_group_fk = ? AND ko.gender_code = ? AND ko.checkpoint_date IS NULL AND ko.team_name ILIKE ?",
		p.Where())
	assert.Equal(t, []interface{}{2025, "D", int64(2030), "M", "%state%"}, p.Args())

	g2, err := NewGroupContext(2025, "R", nil, "", "2025-10-01")
	require.NoError(t, err)
	p2 := SelectGroup(g2, "m", "")
	assert.Equal(t, " WHERE m.season_year = ? AND m.rank_group_type = ? AND m.checkpoint_date = ?", p2.Where())
	assert.Equal(t, []interface{}{2025, "R", "2025-10-01"}, p2.Args())
}

func TestPredicate_MergeKeepsOrder(t *testing.T) {
	p := NewPredicate().And("(m.team_a_id = ? OR m.team_b_id = ?)", int64(1), int64(1))
	p.Merge(NewPredicate().And("m.season_year = ?", 2024)).Merge(nil)

	assert.Equal(t, " WHERE (m.team_a_id = ? OR m.team_b_id = ?) AND m.season_year = ?", p.Where())
	assert.Equal(t, []interface{}{int64(1), int64(1), 2024}, p.Args())
	assert.Empty(t, NewPredicate().Where())
}

func TestPredicate_ArgsIsACopy(t *testing.T) {
	p := NewPredicate().And("x = ?", 1)
	args := p.Args()
	args[0] = 99
	assert.Equal(t, []interface{}{1}, p.Args())
}
