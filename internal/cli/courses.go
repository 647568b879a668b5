package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/query"
	"github.com/fairwaylabs/scorecard/internal/services"
)

// Courses lists all courses through the query cache.
func (a *App) Courses(ctx context.Context) error {
	v, err := a.cache.Get(ctx, query.Key("courses"), func(ctx context.Context) (any, error) {
		return a.courses.GetAll(ctx)
	})
	if err != nil {
		return err
	}

	cs := v.([]models.Course)
	if len(cs) == 0 {
		printlnFn("No courses yet")
		return nil
	}
	for _, c := range cs {
		printlnFn(fmt.Sprintf("[%d] %s, %s %s — %d holes (%s, %s)",
			c.ID, c.Name, c.City, c.State, len(c.Holes), c.Stage, c.Status))
	}
	return nil
}

// NewCourse starts a local draft course.
func (a *App) NewCourse(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Course name", os.Stdout)
	if err != nil {
		return err
	}
	city, err := GetSimpleText(a.reader, "City", os.Stdout)
	if err != nil {
		return err
	}
	state, err := GetSimpleText(a.reader, "State", os.Stdout)
	if err != nil {
		return err
	}

	c, err := a.courses.Create(ctx, services.CourseDraft{Name: name, City: city, State: state})
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("courses"))
	printlnFn(fmt.Sprintf("Draft course %d created; add holes with 'coursehole %d'", c.ID, c.ID))
	return nil
}

// AddCourseHole enters one hole definition for a course.
func (a *App) AddCourseHole(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: coursehole <course-id> [hole-number]")
		return nil
	}
	courseID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: coursehole <course-id> [hole-number]")
		return nil
	}

	var number int
	if len(args) > 1 {
		if number, err = strconv.Atoi(args[1]); err != nil {
			printlnFn("Usage: coursehole <course-id> [hole-number]")
			return nil
		}
	} else {
		if number, err = GetInt(a.reader, "Hole number", os.Stdout); err != nil {
			return err
		}
	}

	par, err := GetInt(a.reader, "Par", os.Stdout)
	if err != nil {
		return err
	}
	handicap, err := GetInt(a.reader, "Handicap rank (1-18)", os.Stdout)
	if err != nil {
		return err
	}

	hd := models.HoleDefinition{Number: number, Par: par, Handicap: handicap}
	if _, err := a.courses.UpsertHoleDefinition(ctx, courseID, hd); err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("courses"))
	printlnFn(fmt.Sprintf("Hole %d saved for course %d", number, courseID))
	return nil
}

// Publish promotes a draft course to the server.
func (a *App) Publish(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: publish <course-id>")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: publish <course-id>")
		return nil
	}

	c, err := a.courses.Publish(ctx, id)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("courses"))
	printlnFn(fmt.Sprintf("Course %s published (%s)", c.Name, c.Status))
	return nil
}
