package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rifat0153/cleannotes/internal/editor"
	"github.com/rifat0153/cleannotes/internal/notes"
	"github.com/spf13/cobra"
)

const (
	defaultSaveTimeout = 10 * time.Second
	swatch             = "██"
	timestampLayout    = "2006-01-02 15:04"
)

var errSessionClosed = errors.New("edit session closed before the save finished")

func (app *cli) newNotesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "List, inspect, edit and delete stored notes",
	}
	cmd.AddCommand(
		app.newNotesListCommand(),
		app.newNotesShowCommand(),
		app.newNotesDeleteCommand(),
		app.newNotesSaveCommand(),
	)
	return cmd
}

func (app *cli) newNotesListCommand() *cobra.Command {
	var orderField, orderDirection string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := notes.ParseNoteOrder(orderField, orderDirection)
			if err != nil {
				return err
			}
			rt, err := app.openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()
			useCases, err := rt.useCases()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			count := 0
			for note, err := range useCases.GetNotes.Execute(cmd.Context(), order) {
				if err != nil {
					return err
				}
				printNoteLine(out, note)
				count++
			}
			if count == 0 {
				fmt.Fprintln(out, "no notes")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&orderField, "order", string(notes.DefaultNoteOrder.Field), "Sort field (date, title, color)")
	cmd.Flags().StringVar(&orderDirection, "direction", string(notes.DefaultNoteOrder.Direction), "Sort direction (asc, desc)")
	return cmd
}

func (app *cli) newNotesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteIDArg(args[0])
			if err != nil {
				return err
			}
			rt, err := app.openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()
			useCases, err := rt.useCases()
			if err != nil {
				return err
			}

			note, found, err := useCases.GetNote.Execute(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("note %d not found", id)
			}
			out := cmd.OutOrStdout()
			printNoteLine(out, note)
			if note.Content != "" {
				fmt.Fprintln(out)
				fmt.Fprintln(out, note.Content)
			}
			return nil
		},
	}
}

func (app *cli) newNotesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteIDArg(args[0])
			if err != nil {
				return err
			}
			rt, err := app.openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()
			useCases, err := rt.useCases()
			if err != nil {
				return err
			}

			note, found, err := useCases.GetNote.Execute(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("note %d not found", id)
			}
			if err := useCases.DeleteNote.Execute(cmd.Context(), note); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted note %d\n", id)
			return nil
		},
	}
}

type saveOptions struct {
	id      int64
	title   string
	content string
	color   string
	timeout time.Duration
}

func (app *cli) newNotesSaveCommand() *cobra.Command {
	options := saveOptions{id: notes.NoNoteID.Int64()}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a note, or edit one with --id, through an edit session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes []editor.Event
			if cmd.Flags().Changed("title") {
				changes = append(changes, editor.EnteredTitle{Value: options.title})
			}
			if cmd.Flags().Changed("content") {
				changes = append(changes, editor.EnteredContent{Value: options.content})
			}
			if options.color != "" {
				event, err := editor.ParseEvent(editor.EventChangeColor, editor.EventPayload{Color: options.color})
				if err != nil {
					return err
				}
				changes = append(changes, event)
			}

			rt, err := app.openRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()
			useCases, err := rt.useCases()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), options.timeout)
			defer cancel()
			saved, err := runEditSession(ctx, editor.SessionConfig{
				UseCases:    useCases,
				NoteID:      notes.NoteID(options.id),
				Logger:      rt.logger,
				EventBuffer: rt.config.EventBuffer,
			}, changes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved note %d\n", saved)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&options.id, "id", options.id, "Note to edit (omit to create a new note)")
	flags.StringVar(&options.title, "title", "", "Note title")
	flags.StringVar(&options.content, "content", "", "Note content")
	flags.StringVar(&options.color, "color", "", "Palette color name or 0xAARRGGBB code")
	flags.DurationVar(&options.timeout, "timeout", defaultSaveTimeout, "How long to wait for the save to finish")
	return cmd
}

// runEditSession opens a session, waits for hydration, applies changes and saves.
// It returns the stored note id or the validation message as an error.
func runEditSession(ctx context.Context, cfg editor.SessionConfig, changes []editor.Event) (notes.NoteID, error) {
	session := editor.NewSession(ctx, cfg)
	defer func() {
		session.Close()
		session.Wait()
	}()
	events, cleanup := session.Events(ctx)
	defer cleanup()

	select {
	case <-session.Hydrated():
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	if cfg.NoteID > 0 && session.State().NoteID != cfg.NoteID {
		return 0, fmt.Errorf("note %d not found", cfg.NoteID)
	}

	for _, change := range changes {
		session.Dispatch(change)
	}
	session.Dispatch(editor.SaveNote{})

	select {
	case event, ok := <-events:
		if !ok {
			return 0, errSessionClosed
		}
		if event.Kind == editor.UiEventValidationFailed {
			return 0, fmt.Errorf("note not saved: %s", event.Message)
		}
		return event.NoteID, nil
	case <-ctx.Done():
		return 0, fmt.Errorf("save did not finish: %w", ctx.Err())
	}
}

func printNoteLine(out io.Writer, note notes.Note) {
	r, g, b := note.Color.RGB()
	title := note.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(out, "%s %4d  %s  %s\n",
		color.RGB(r, g, b).Sprint(swatch),
		note.ID.Int64(),
		color.New(color.Bold).Sprint(title),
		color.New(color.Faint).Sprint(time.UnixMilli(note.Timestamp).Format(timestampLayout)),
	)
}

func parseNoteIDArg(raw string) (notes.NoteID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", notes.ErrInvalidNoteID, raw)
	}
	return notes.NewNoteID(value)
}
