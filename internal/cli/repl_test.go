package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) Rounds(ctx context.Context) error   { return f.record("rounds", nil) }
func (f *fakeExec) NewRound(ctx context.Context) error { return f.record("newround", nil) }
func (f *fakeExec) Hole(ctx context.Context, args []string) error {
	return f.record("hole", args)
}
func (f *fakeExec) EndRound(ctx context.Context) error { return f.record("endround", nil) }
func (f *fakeExec) DeleteRound(ctx context.Context, args []string) error {
	return f.record("delround", args)
}
func (f *fakeExec) Bag(ctx context.Context) error     { return f.record("bag", nil) }
func (f *fakeExec) AddClub(ctx context.Context) error { return f.record("addclub", nil) }
func (f *fakeExec) RemoveClub(ctx context.Context, args []string) error {
	return f.record("delclub", args)
}
func (f *fakeExec) Courses(ctx context.Context) error   { return f.record("courses", nil) }
func (f *fakeExec) NewCourse(ctx context.Context) error { return f.record("newcourse", nil) }
func (f *fakeExec) AddCourseHole(ctx context.Context, args []string) error {
	return f.record("coursehole", args)
}
func (f *fakeExec) Publish(ctx context.Context, args []string) error {
	return f.record("publish", args)
}
func (f *fakeExec) Sync(ctx context.Context) error  { return f.record("sync", nil) }
func (f *fakeExec) Fetch(ctx context.Context) error { return f.record("fetch", nil) }
func (f *fakeExec) Queue(ctx context.Context) error { return f.record("queue", nil) }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"newround",
		"hole 3",
		"endround",
		"bag",
		"publish 7",
		"sync",
		"queue",
		"nonsense",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	want := []string{"newround", "hole", "endround", "bag", "publish", "sync", "queue"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, want)
	}
	for i, c := range exec.calls {
		if c != want[i] {
			t.Fatalf("call %d: got %q, want %q", i, c, want[i])
		}
	}
	if exec.args[1][0] != "3" {
		t.Fatalf("hole args: got %v", exec.args[1])
	}
	if exec.args[5][0] != "7" {
		t.Fatalf("publish args: got %v", exec.args[5])
	}
}

func TestRunREPL_HandlerErrorKeepsLoopAlive(t *testing.T) {
	var printed []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		printed = append(printed, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &failingExec{fakeExec: &fakeExec{}}
	sc := bufio.NewScanner(strings.NewReader("rounds\nbag\nquit\n"))

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 2 {
		t.Fatalf("loop must survive a handler error: %v", exec.calls)
	}
	var sawError bool
	for _, p := range printed {
		if strings.Contains(p, "Error: no such round") {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("handler error was not reported: %v", printed)
	}
}

type failingExec struct {
	*fakeExec
}

func (f *failingExec) Rounds(ctx context.Context) error {
	f.record("rounds", nil)
	return fmt.Errorf("no such round")
}

func TestRunREPL_EOFExits(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader(""))

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
