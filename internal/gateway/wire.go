package gateway

import (
	"encoding/json"
	"time"

	"github.com/fairwaylabs/scorecard/internal/models"
)

// Wire DTOs mirror the backend's snake_case JSON. Each entity has exactly
// one bidirectional codec (ToWire/FromWire pair) so the mapping stays total
// and symmetric; nothing else in the repo builds wire shapes by hand.

type RoundWire struct {
	ID         *int64     `json:"id,omitempty"`
	CourseID   *int64     `json:"course_id,omitempty"`
	CourseName string     `json:"course_name"`
	Date       string     `json:"date"`
	TotalScore int        `json:"total_score"`
	CreatedAt  time.Time  `json:"created_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	Holes      []HoleWire `json:"holes"`
}

type HoleWire struct {
	Number      int     `json:"hole_number"`
	Par         int     `json:"par"`
	Score       int     `json:"score"`
	Putts       int     `json:"putts"`
	Fairway     string  `json:"fairway,omitempty"`
	GIR         string  `json:"gir,omitempty"`
	WaterHazard bool    `json:"water_hazard"`
	Bunker      bool    `json:"bunker"`
	Proximity   float64 `json:"proximity,omitempty"`
	Clubs       []int64 `json:"clubs"`
}

type ClubWire struct {
	ID       *int64 `json:"id,omitempty"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type CourseWire struct {
	ID     *int64               `json:"id,omitempty"`
	Name   string               `json:"name"`
	City   string               `json:"city,omitempty"`
	State  string               `json:"state,omitempty"`
	Lat    float64              `json:"lat"`
	Lng    float64              `json:"lng"`
	Status string               `json:"status"`
	Holes  []HoleDefinitionWire `json:"holes"`
}

type HoleDefinitionWire struct {
	ID        *int64          `json:"id,omitempty"`
	Number    int             `json:"hole_number"`
	Par       int             `json:"par"`
	Handicap  int             `json:"handicap"`
	PinFront  LatLngWire      `json:"pin_front"`
	PinMiddle LatLngWire      `json:"pin_middle"`
	PinBack   LatLngWire      `json:"pin_back"`
	Geometry  json.RawMessage `json:"geometry,omitempty"`
	TeeBoxes  json.RawMessage `json:"tee_boxes,omitempty"`
}

type LatLngWire struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func HoleToWire(h models.Hole) HoleWire {
	clubs := h.Clubs
	if clubs == nil {
		clubs = []int64{}
	}
	return HoleWire{
		Number:      h.Number,
		Par:         h.Par,
		Score:       h.Score,
		Putts:       h.Putts,
		Fairway:     string(h.Fairway),
		GIR:         string(h.GIR),
		WaterHazard: h.WaterHazard,
		Bunker:      h.Bunker,
		Proximity:   h.Proximity,
		Clubs:       clubs,
	}
}

func HoleFromWire(w HoleWire) models.Hole {
	return models.Hole{
		Number:      w.Number,
		Par:         w.Par,
		Score:       w.Score,
		Putts:       w.Putts,
		Fairway:     models.FairwayOutcome(w.Fairway),
		GIR:         models.GIROutcome(w.GIR),
		WaterHazard: w.WaterHazard,
		Bunker:      w.Bunker,
		Proximity:   w.Proximity,
		Clubs:       w.Clubs,
	}
}

// RoundToWire maps a local round to its wire shape. The server id, when
// present, travels in the id field; local ids never cross the wire.
func RoundToWire(rd models.Round) RoundWire {
	holes := make([]HoleWire, 0, len(rd.Holes))
	for _, h := range rd.Holes {
		holes = append(holes, HoleToWire(h))
	}
	return RoundWire{
		ID:         rd.ServerID,
		CourseID:   rd.CourseServerID,
		CourseName: rd.CourseName,
		Date:       rd.Date,
		TotalScore: rd.TotalScore,
		CreatedAt:  rd.CreatedAt,
		EndedAt:    rd.EndedAt,
		Holes:      holes,
	}
}

// RoundFromWire maps a server round to the local shape. The result carries
// no local id and no sync status; the caller owns both.
func RoundFromWire(w RoundWire) models.Round {
	holes := make([]models.Hole, 0, len(w.Holes))
	for _, h := range w.Holes {
		holes = append(holes, HoleFromWire(h))
	}
	return models.Round{
		ServerID:       w.ID,
		CourseServerID: w.CourseID,
		CourseName:     w.CourseName,
		Date:           w.Date,
		TotalScore:     w.TotalScore,
		CreatedAt:      w.CreatedAt,
		EndedAt:        w.EndedAt,
		Holes:          holes,
	}
}

func ClubToWire(c models.Club) ClubWire {
	return ClubWire{
		ID:       c.ServerID,
		Name:     c.Name,
		Category: string(c.Category),
	}
}

func ClubFromWire(w ClubWire) models.Club {
	return models.Club{
		ServerID: w.ID,
		Name:     w.Name,
		Category: models.ClubCategory(w.Category),
	}
}

func HoleDefinitionToWire(hd models.HoleDefinition) HoleDefinitionWire {
	return HoleDefinitionWire{
		ID:        hd.ServerID,
		Number:    hd.Number,
		Par:       hd.Par,
		Handicap:  hd.Handicap,
		PinFront:  LatLngWire(hd.Front),
		PinMiddle: LatLngWire(hd.Middle),
		PinBack:   LatLngWire(hd.Back),
		Geometry:  hd.Geometry,
		TeeBoxes:  hd.TeeBoxes,
	}
}

func HoleDefinitionFromWire(w HoleDefinitionWire) models.HoleDefinition {
	return models.HoleDefinition{
		ServerID: w.ID,
		Number:   w.Number,
		Par:      w.Par,
		Handicap: w.Handicap,
		Front:    models.LatLng(w.PinFront),
		Middle:   models.LatLng(w.PinMiddle),
		Back:     models.LatLng(w.PinBack),
		Geometry: w.Geometry,
		TeeBoxes: w.TeeBoxes,
	}
}

func CourseToWire(c models.Course) CourseWire {
	holes := make([]HoleDefinitionWire, 0, len(c.Holes))
	for _, hd := range c.Holes {
		holes = append(holes, HoleDefinitionToWire(hd))
	}
	return CourseWire{
		ID:     c.ServerID,
		Name:   c.Name,
		City:   c.City,
		State:  c.State,
		Lat:    c.Lat,
		Lng:    c.Lng,
		Status: string(c.Stage),
		Holes:  holes,
	}
}

func CourseFromWire(w CourseWire) models.Course {
	holes := make([]models.HoleDefinition, 0, len(w.Holes))
	for _, hd := range w.Holes {
		holes = append(holes, HoleDefinitionFromWire(hd))
	}
	return models.Course{
		ServerID: w.ID,
		Name:     w.Name,
		City:     w.City,
		State:    w.State,
		Lat:      w.Lat,
		Lng:      w.Lng,
		Stage:    models.CourseStage(w.Status),
		Holes:    holes,
	}
}
