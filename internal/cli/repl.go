package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Rounds(ctx context.Context) error
	NewRound(ctx context.Context) error
	Hole(ctx context.Context, args []string) error
	EndRound(ctx context.Context) error
	DeleteRound(ctx context.Context, args []string) error
	Bag(ctx context.Context) error
	AddClub(ctx context.Context) error
	RemoveClub(ctx context.Context, args []string) error
	Courses(ctx context.Context) error
	NewCourse(ctx context.Context) error
	AddCourseHole(ctx context.Context, args []string) error
	Publish(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Fetch(ctx context.Context) error
	Queue(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the scorecard CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	rounds                — list all rounds
//	newround              — start a round (becomes the active round)
//	hole [n]              — enter one hole's result for the active round
//	endround              — finish the active round
//	delround <id>         — delete a round
//	bag                   — list the clubs in the bag
//	addclub               — add a club
//	delclub <id>          — remove a club
//	courses               — list courses
//	newcourse             — start a draft course
//	coursehole <id> [n]   — enter a hole definition for a course
//	publish <id>          — publish a draft course
//	sync                  — drain the sync queue now
//	fetch                 — pull rounds, courses, and the bag from the server
//	queue                 — show sync queue status
//	exit | quit           — leave the program
//
// Any errors returned by command handlers are printed here; the loop itself
// never aborts on a handler error.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sc> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: rounds, newround, hole, endround, delround,")
			printlnFn("  bag, addclub, delclub, courses, newcourse, coursehole, publish,")
			printlnFn("  sync, fetch, queue, exit")

		case "rounds":
			err = a.Rounds(ctx)

		case "newround":
			err = a.NewRound(ctx)

		case "hole":
			err = a.Hole(ctx, args)

		case "endround":
			err = a.EndRound(ctx)

		case "delround":
			err = a.DeleteRound(ctx, args)

		case "bag":
			err = a.Bag(ctx)

		case "addclub":
			err = a.AddClub(ctx)

		case "delclub":
			err = a.RemoveClub(ctx, args)

		case "courses":
			err = a.Courses(ctx)

		case "newcourse":
			err = a.NewCourse(ctx)

		case "coursehole":
			err = a.AddCourseHole(ctx, args)

		case "publish":
			err = a.Publish(ctx, args)

		case "sync":
			err = a.Sync(ctx)

		case "fetch":
			err = a.Fetch(ctx)

		case "queue":
			err = a.Queue(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command: " + cmd)
		}

		if err != nil {
			printlnFn("Error: " + err.Error())
		}
	}
}
