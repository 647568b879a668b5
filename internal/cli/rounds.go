package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/query"
	"github.com/fairwaylabs/scorecard/internal/services"
)

// Rounds lists all rounds through the query cache.
func (a *App) Rounds(ctx context.Context) error {
	v, err := a.cache.Get(ctx, query.Key("rounds"), func(ctx context.Context) (any, error) {
		return a.rounds.GetAll(ctx)
	})
	if err != nil {
		return err
	}

	rds := v.([]models.Round)
	if len(rds) == 0 {
		printlnFn("No rounds yet")
		return nil
	}
	for _, rd := range rds {
		marker := ""
		if rd.ID == a.activeRound {
			marker = " *"
		}
		printlnFn(fmt.Sprintf("[%d] %s %s score=%d holes=%d (%s)%s",
			rd.ID, rd.Date, rd.CourseName, rd.TotalScore, len(rd.Holes), rd.Status, marker))
	}
	return nil
}

// NewRound starts a round and makes it the active one for hole entry.
func (a *App) NewRound(ctx context.Context) error {
	courseName, err := GetSimpleText(a.reader, "Course name", os.Stdout)
	if err != nil {
		return err
	}
	date, err := GetSimpleText(a.reader, "Date (YYYY-MM-DD, empty for today)", os.Stdout)
	if err != nil {
		return err
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	draft := services.RoundDraft{CourseName: courseName, Date: date}
	if c := a.findCourseByName(ctx, courseName); c != nil {
		draft.CourseID = &c.ID
		draft.CourseServerID = c.ServerID
	}

	rd, err := a.rounds.Create(ctx, draft)
	if err != nil {
		return err
	}
	a.activeRound = rd.ID
	a.cache.Invalidate(query.Key("rounds"))

	printlnFn(fmt.Sprintf("Round %d started at %s", rd.ID, rd.CourseName))
	return nil
}

func (a *App) findCourseByName(ctx context.Context, name string) *models.Course {
	cs, err := a.courses.GetAll(ctx)
	if err != nil {
		return nil
	}
	for _, c := range cs {
		if strings.EqualFold(c.Name, name) {
			return &c
		}
	}
	return nil
}

// Hole records one hole's result for the active round. The hole number can
// be given as an argument; re-entering a number overwrites the earlier
// entry for that hole.
func (a *App) Hole(ctx context.Context, args []string) error {
	if a.activeRound == 0 {
		printlnFn("No active round; use 'newround' first")
		return nil
	}

	var number int
	var err error
	if len(args) > 0 {
		number, err = strconv.Atoi(args[0])
		if err != nil {
			printlnFn("Usage: hole [number]")
			return nil
		}
	} else {
		number, err = GetInt(a.reader, "Hole number", os.Stdout)
		if err != nil {
			return err
		}
	}

	par, err := GetInt(a.reader, "Par", os.Stdout)
	if err != nil {
		return err
	}
	score, err := GetInt(a.reader, "Score", os.Stdout)
	if err != nil {
		return err
	}
	putts, err := GetInt(a.reader, "Putts", os.Stdout)
	if err != nil {
		return err
	}

	h := models.Hole{Number: number, Par: par, Score: score, Putts: putts}

	if par > 3 {
		fw, err := GetSimpleText(a.reader, "Fairway (hit/left/right, empty to skip)", os.Stdout)
		if err != nil {
			return err
		}
		h.Fairway = models.FairwayOutcome(fw)
	}
	gir, err := GetSimpleText(a.reader, "GIR (hit/long/short/left/right, empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	h.GIR = models.GIROutcome(gir)

	if h.WaterHazard, err = GetYesNo(a.reader, "Water hazard?", os.Stdout); err != nil {
		return err
	}
	if h.Bunker, err = GetYesNo(a.reader, "Bunker?", os.Stdout); err != nil {
		return err
	}

	if _, err := a.rounds.SaveHole(ctx, a.activeRound, h); err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("rounds"))

	rd, err := a.rounds.GetByID(ctx, a.activeRound)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Hole %d saved, running total %d", number, rd.TotalScore))
	return nil
}

// EndRound stamps the active round's end time and clears it.
func (a *App) EndRound(ctx context.Context) error {
	if a.activeRound == 0 {
		printlnFn("No active round")
		return nil
	}
	now := time.Now().UTC()
	rd, err := a.rounds.Update(ctx, a.activeRound, services.RoundUpdate{EndedAt: &now})
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("rounds"))
	printlnFn(fmt.Sprintf("Round %d finished, total %d", rd.ID, rd.TotalScore))
	a.activeRound = 0
	return nil
}

// DeleteRound deletes the round given by id.
func (a *App) DeleteRound(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: delround <id>")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: delround <id>")
		return nil
	}

	if err := a.rounds.Delete(ctx, id); err != nil {
		return err
	}
	if a.activeRound == id {
		a.activeRound = 0
	}
	a.cache.Invalidate(query.Key("rounds"))
	printlnFn(fmt.Sprintf("Round %d deleted", id))
	return nil
}
