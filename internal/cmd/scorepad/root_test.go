package scorepad

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/scorepad/internal/scorepad/domain/event"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAppendStateAndLogFlow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scorepad.db")

	out, err := runCLI(t, "--db", db, "append", "player.added", `{"player_id":"p1","name":"Ada"}`)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !strings.Contains(out, "height 1") {
		t.Fatalf("expected assigned height 1, got %q", out)
	}

	out, err = runCLI(t, "--db", db, "state")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !strings.Contains(out, "height 1") || !strings.Contains(out, "Ada") {
		t.Fatalf("expected derived state with Ada at height 1, got %q", out)
	}

	out, err = runCLI(t, "--db", db, "log")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(out, `"player.added"`) {
		t.Fatalf("expected the appended event in the log, got %q", out)
	}
}

func TestAppendRetrySameIDPrintsOriginalHeight(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scorepad.db")

	first, err := runCLI(t, "--db", db, "append", "--id", "retry-1", "player.added", `{"player_id":"p1","name":"Ada"}`)
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	second, err := runCLI(t, "--db", db, "append", "--id", "retry-1", "player.added", `{"player_id":"p1","name":"Ada"}`)
	if err != nil {
		t.Fatalf("retried append: %v", err)
	}
	if first != second {
		t.Fatalf("retry diverged:\nfirst:  %q\nsecond: %q", first, second)
	}
}

func TestAppendRejectsUnknownType(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scorepad.db")
	_, err := runCLI(t, "--db", db, "append", "mystery.event")
	if !errors.Is(err, event.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestArchiveEmptyLogResetsWithoutRecord(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scorepad.db")

	out, err := runCLI(t, "--db", db, "archive")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.Contains(out, "reset without archiving") {
		t.Fatalf("expected empty-log reset message, got %q", out)
	}

	out, err = runCLI(t, "--db", db, "games")
	if err != nil {
		t.Fatalf("games: %v", err)
	}
	if !strings.Contains(out, "no archived games") {
		t.Fatalf("expected no archived games, got %q", out)
	}
}
