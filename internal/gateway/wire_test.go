package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/scorecard/internal/models"
)

func ptr(v int64) *int64 { return &v }

func TestRoundCodec_Symmetric(t *testing.T) {
	ended := time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC)
	rd := models.Round{
		ServerID:       ptr(42),
		CourseServerID: ptr(7),
		CourseName:     "Augusta",
		Date:           "2024-05-01",
		TotalScore:     74,
		CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		EndedAt:        &ended,
		Holes: []models.Hole{
			{Number: 1, Par: 4, Score: 5, Putts: 2, Fairway: models.FairwayHit, GIR: models.GIRHit, Clubs: []int64{1, 5}},
			{Number: 2, Par: 3, Score: 3, Putts: 1, WaterHazard: true, Proximity: 4.5, Clubs: []int64{}},
		},
	}

	back := RoundFromWire(RoundToWire(rd))
	assert.Equal(t, rd, back)
}

func TestRoundWire_LocalStateNeverCrossesWire(t *testing.T) {
	rd := models.Round{ID: 99, Status: models.StatusModified, CourseName: "Local"}
	b, err := json.Marshal(RoundToWire(rd))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "99")
	assert.NotContains(t, string(b), "modified")
	assert.Contains(t, string(b), `"course_name":"Local"`)
}

func TestCourseCodec_Symmetric(t *testing.T) {
	c := models.Course{
		ServerID: ptr(3),
		Name:     "Links",
		City:     "Dornoch",
		State:    "Highland",
		Lat:      57.88,
		Lng:      -4.03,
		Stage:    models.StagePublished,
		Holes: []models.HoleDefinition{
			{
				ServerID: ptr(30),
				Number:   1,
				Par:      4,
				Handicap: 9,
				Front:    models.LatLng{Lat: 57.881, Lng: -4.031},
				Middle:   models.LatLng{Lat: 57.882, Lng: -4.032},
				Back:     models.LatLng{Lat: 57.883, Lng: -4.033},
				Geometry: json.RawMessage(`{"fairway":[]}`),
			},
		},
	}

	back := CourseFromWire(CourseToWire(c))
	assert.Equal(t, c, back)
}

func TestClubCodec_Symmetric(t *testing.T) {
	c := models.Club{ServerID: ptr(11), Name: "56 Wedge", Category: models.ClubWedge}
	assert.Equal(t, c, ClubFromWire(ClubToWire(c)))
}
