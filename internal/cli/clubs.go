package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/fairwaylabs/scorecard/internal/models"
	"github.com/fairwaylabs/scorecard/internal/query"
)

// Bag lists the clubs in the bag through the query cache.
func (a *App) Bag(ctx context.Context) error {
	v, err := a.cache.Get(ctx, query.Key("clubs"), func(ctx context.Context) (any, error) {
		return a.clubs.GetAll(ctx)
	})
	if err != nil {
		return err
	}

	bag := v.([]models.Club)
	if len(bag) == 0 {
		printlnFn("The bag is empty")
		return nil
	}
	for _, c := range bag {
		printlnFn(fmt.Sprintf("[%d] %s (%s) %s", c.ID, c.Name, c.Category, c.Status))
	}
	return nil
}

// AddClub adds one club, offering the seeded catalog as a shortcut.
func (a *App) AddClub(ctx context.Context) error {
	defs, err := a.clubs.ListDefinitions(ctx)
	if err != nil {
		return err
	}
	for _, d := range defs {
		printlnFn(fmt.Sprintf("  [%d] %s (%s, %.1f°)", d.ID, d.Name, d.Category, d.Loft))
	}

	n, picked, err := GetOptionalInt(a.reader, "Catalog number (empty for custom)", os.Stdout)
	if err != nil {
		return err
	}

	var name string
	var category models.ClubCategory
	if picked {
		for _, d := range defs {
			if d.ID == int64(n) {
				name, category = d.Name, d.Category
			}
		}
		if name == "" {
			printlnFn("No such catalog entry")
			return nil
		}
	} else {
		if name, err = GetSimpleText(a.reader, "Club name", os.Stdout); err != nil {
			return err
		}
		cat, err := GetSimpleText(a.reader, "Category (driver/wood/hybrid/iron/wedge/putter)", os.Stdout)
		if err != nil {
			return err
		}
		category = models.ClubCategory(cat)
	}

	c, err := a.clubs.AddClub(ctx, name, category)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("clubs"))
	printlnFn(fmt.Sprintf("Added %s [%d]", c.Name, c.ID))
	return nil
}

// RemoveClub drops the club given by id from the bag.
func (a *App) RemoveClub(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: delclub <id>")
		return nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Usage: delclub <id>")
		return nil
	}

	if err := a.clubs.RemoveClub(ctx, id); err != nil {
		return err
	}
	a.cache.Invalidate(query.Key("clubs"))
	printlnFn(fmt.Sprintf("Club %d removed", id))
	return nil
}
