package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		want    string
		wantErr bool
	}{
		{name: "time value drops clock", src: time.Date(2024, 10, 5, 17, 30, 0, 0, time.UTC), want: "2024-10-05"},
		{name: "bytes", src: []byte("2024-11-22"), want: "2024-11-22"},
		{name: "string with time suffix", src: "2024-09-01T00:00:00Z", want: "2024-09-01"},
		{name: "garbage string", src: "not-a-date", wantErr: true},
		{name: "unsupported type", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := d.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.String() != tt.want {
				t.Errorf("Scan() = %v, want %v", d.String(), tt.want)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, time.November, 1)

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"2024-11-01"` {
		t.Errorf("Marshal() = %s, want %q", b, "2024-11-01")
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("Unmarshal() = %v, want %v", back, d)
	}

	if err := json.Unmarshal([]byte(`20241101`), &back); err == nil {
		t.Error("Unmarshal() of unquoted value should fail")
	}
}

func TestDate_NullablePointerSerialisesAsNull(t *testing.T) {
	row := struct {
		CheckpointDate *Date `json:"checkpoint_date"`
	}{}

	b, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"checkpoint_date":null}` {
		t.Errorf("Marshal() = %s", b)
	}
}

func TestSnapshotDisplayName(t *testing.T) {
	got := SnapshotDisplayName(NewDate(2024, time.October, 5))
	if got != "October 05, 2024" {
		t.Errorf("SnapshotDisplayName() = %q", got)
	}
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("listing athletes: %w", NewValidationError("gender", "X", "must be M or F"))

	if !IsValidation(err) {
		t.Fatal("IsValidation() should see through wrapping")
	}
	if IsValidation(errors.New("boom")) {
		t.Error("IsValidation() should be false for plain errors")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As failed")
	}
	if ve.Error() != "gender: must be M or F" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if ve.IsTransient() {
		t.Error("validation errors are never transient")
	}
}

func TestComponentScores_ScoreAndRank(t *testing.T) {
	score, rank := 12.5, 3
	c := ComponentScores{SEWRScore: &score, SEWRRank: &rank}

	tests := []struct {
		component string
		wantScore *float64
		wantRank  *int
	}{
		{ComponentSEWR, &score, &rank},
		{ComponentSAGA, nil, nil},
		{"bogus", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.component, func(t *testing.T) {
			s, r := c.ScoreAndRank(tt.component)
			if s != tt.wantScore || r != tt.wantRank {
				t.Errorf("ScoreAndRank(%q) = (%v, %v)", tt.component, s, r)
			}
		})
	}

	if !IsComponent("osma") || IsComponent("scs") {
		t.Error("IsComponent() misclassified a component")
	}
}

func TestTeamKnockoutMatchup_Helpers(t *testing.T) {
	a, b := "Alpha", "Beta"
	winner := int64(20)
	m := TeamKnockoutMatchup{TeamAID: 10, TeamBID: 20, TeamAName: &a, TeamBName: &b, WinnerTeamID: &winner}

	if !m.Involves(10) || !m.Involves(20) || m.Involves(30) {
		t.Error("Involves() wrong")
	}
	if m.Opponent(10) != 20 || m.Opponent(20) != 10 {
		t.Error("Opponent() wrong")
	}
	if m.NameOf(20) != &b || m.NameOf(99) != nil {
		t.Error("NameOf() wrong")
	}
	if !m.WonBy(20) || m.WonBy(10) {
		t.Error("WonBy() wrong")
	}

	m.WinnerTeamID = nil
	if m.WonBy(20) {
		t.Error("WonBy() should be false without a winner")
	}
}
