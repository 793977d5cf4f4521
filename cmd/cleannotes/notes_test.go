package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rifat0153/cleannotes/internal/editor"
	"github.com/rifat0153/cleannotes/internal/notes"
	"github.com/rifat0153/cleannotes/internal/notes/memory"
)

func runCommand(t *testing.T, databasePath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--database-path", databasePath, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestNotesCommandsRoundTrip(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cli.db")

	output, err := runCommand(t, databasePath, "notes", "save", "--title", "Groceries", "--content", "Milk", "--color", "violet")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if strings.TrimSpace(output) != "saved note 1" {
		t.Fatalf("unexpected save output %q", output)
	}

	output, err = runCommand(t, databasePath, "notes", "save", "--id", "1", "--content", "Milk, eggs")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if strings.TrimSpace(output) != "saved note 1" {
		t.Fatalf("edit must keep the note id, got %q", output)
	}

	output, err = runCommand(t, databasePath, "notes", "show", "1")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(output, "Groceries") || !strings.Contains(output, "Milk, eggs") {
		t.Fatalf("unexpected show output %q", output)
	}

	output, err = runCommand(t, databasePath, "notes", "list", "--order", "title", "--direction", "asc")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Count(output, "\n") != 1 || !strings.Contains(output, "Groceries") {
		t.Fatalf("unexpected list output %q", output)
	}

	if _, err := runCommand(t, databasePath, "notes", "delete", "1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	output, err = runCommand(t, databasePath, "notes", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(output) != "no notes" {
		t.Fatalf("expected empty list, got %q", output)
	}
	if _, err := runCommand(t, databasePath, "notes", "show", "1"); err == nil {
		t.Fatalf("expected show of deleted note to fail")
	}
}

func TestNotesSaveRejectsBlankNote(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cli.db")

	_, err := runCommand(t, databasePath, "notes", "save", "--title", "   ")
	if err == nil || !strings.Contains(err.Error(), "cannot both be empty") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNotesSaveRejectsUnknownColor(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cli.db")

	if _, err := runCommand(t, databasePath, "notes", "save", "--title", "x", "--color", "mauve"); err == nil {
		t.Fatalf("expected unknown color to be rejected")
	}
}

func TestRunEditSessionReportsMissingNote(t *testing.T) {
	useCases, err := notes.NewUseCases(notes.UseCasesConfig{Repository: memory.NewRepository()})
	if err != nil {
		t.Fatalf("failed to build use cases: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = runEditSession(ctx, editor.SessionConfig{UseCases: useCases, NoteID: 42}, []editor.Event{
		editor.EnteredTitle{Value: "ghost"},
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected missing note error, got %v", err)
	}
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("CLEANNOTES_AUTH_SIGNING_SECRET", "")

	if _, err := runCommand(t, databasePath, "token"); err == nil {
		t.Fatalf("expected token command to require a signing secret")
	}
	output, err := runCommand(t, databasePath, "--signing-secret", "cli-secret", "token")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if strings.Count(strings.TrimSpace(output), ".") != 2 {
		t.Fatalf("expected a JWT, got %q", output)
	}
}
