package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xcri-rankings/internal/models"
)

func TestParseScoringGroup(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{in: "", want: DivisionScope},
		{in: "division", want: DivisionScope},
		{in: "Region_4", want: Scope{Kind: Region, ID: 4}},
		{in: "conference_118", want: Scope{Kind: Conference, ID: 118}},
		{in: "region_", wantErr: true},
		{in: "region_-3", wantErr: true},
		{in: "state_9", wantErr: true},
		{in: "national", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScoringGroup(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, models.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScope_RendersBothShapes(t *testing.T) {
	s, err := ParseScoringGroup("conference_12")
	require.NoError(t, err)
	assert.Equal(t, "conference_12", s.ScoringGroup())
	assert.Equal(t, "C", s.GroupType())
	fk, ok := s.GroupFK()
	assert.True(t, ok)
	assert.Equal(t, int64(12), fk)

	fk = 12
	back, err := ParseGroupType("c", &fk)
	require.NoError(t, err)
	assert.Equal(t, s, back)

	_, ok = DivisionScope.GroupFK()
	assert.False(t, ok)
	assert.Equal(t, "D", DivisionScope.GroupType())
}

func TestParseGroupType_Rejects(t *testing.T) {
	_, err := ParseGroupType("X", nil)
	assert.True(t, models.IsValidation(err))

	zero := int64(0)
	_, err = ParseGroupType("R", &zero)
	assert.True(t, models.IsValidation(err))
}

func TestNewContext_Defaults(t *testing.T) {
	c, err := NewContext(2025, nil, "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, Live(2025), c)
	assert.Nil(t, c.Checkpoint)
	assert.Nil(t, c.Gender)
}

func TestNewContext_Validation(t *testing.T) {
	tests := []struct {
		name       string
		season     int
		gender     string
		checkpoint string
		algorithm  string
		field      string
	}{
		{name: "bad gender", season: 2024, gender: "X", field: "gender"},
		{name: "bad date", season: 2024, checkpoint: "10/05/2024", field: "checkpoint_date"},
		{name: "bad algorithm", season: 2024, algorithm: "medium", field: "algorithm_type"},
		{name: "bad season", season: 24, field: "season_year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewContext(tt.season, nil, tt.gender, "", tt.checkpoint, tt.algorithm)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNormalizeGender(t *testing.T) {
	g, err := NormalizeGender(" f ")
	require.NoError(t, err)
	assert.Equal(t, "F", *g)
}

func TestNewPage(t *testing.T) {
	p, err := NewPage(25, 50, 5000)
	require.NoError(t, err)
	assert.Equal(t, Page{Limit: 25, Offset: 50}, p)

	_, err = NewPage(0, 0, 100)
	assert.True(t, models.IsValidation(err))
	_, err = NewPage(501, 0, 500)
	assert.True(t, models.IsValidation(err))
	_, err = NewPage(10, -1, 500)
	assert.True(t, models.IsValidation(err))
}
