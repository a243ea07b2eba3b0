package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pablasso/quadro/internal/board"
	"github.com/pablasso/quadro/internal/detail"
	"github.com/pablasso/quadro/internal/gateway"
	"github.com/pablasso/quadro/internal/task"
)

var errNothingToChange = errors.New("nothing to change: pass --title, --description or --status")

func newTasksCmd(g *globalFlags) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and change tasks without opening the board",
	}

	tasksCmd.AddCommand(newTasksListCmd(g))
	tasksCmd.AddCommand(newTasksAddCmd(g))
	tasksCmd.AddCommand(newTasksMoveCmd(g))
	tasksCmd.AddCommand(newTasksEditCmd(g))
	tasksCmd.AddCommand(newTasksRmCmd(g))

	return tasksCmd
}

// withBoard loads the board from the API and hands it to fn.
func withBoard(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, client *gateway.Client, store *board.Store) error) error {
	e, err := loadEnv(cmd, g, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close()

	client, err := e.client()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store := board.NewStore(board.WithStoreLogger(e.log))
	if err := store.ApplyLoaded(board.Load(client)(ctx)); err != nil {
		return err
	}
	return fn(ctx, client, store)
}

func findTask(store *board.Store, arg string) (task.Task, board.Location, error) {
	id := task.ID(strings.TrimSpace(arg))
	t, c, i, ok := store.Find(id)
	if !ok {
		return task.Task{}, board.Location{}, &task.NotFoundError{ID: id}
	}
	return t, board.Location{Column: c, Index: i}, nil
}

func newTasksListCmd(g *globalFlags) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			columns := task.Columns()
			if column != "" {
				c, err := task.ParseColumn(column)
				if err != nil {
					return err
				}
				columns = []task.Column{c}
			}

			return withBoard(cmd, g, func(ctx context.Context, _ *gateway.Client, store *board.Store) error {
				grouping := store.Grouping()
				out := cmd.OutOrStdout()

				total := 0
				for _, c := range columns {
					total += grouping.LaneLen(c)
				}
				if total == 0 {
					fmt.Fprintln(out, "No tasks.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCOLUMN\tSTATUS\tTITLE")
				for _, c := range columns {
					for _, t := range grouping.Lane(c) {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, c.Key(), t.Status, t.Title)
					}
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "Only list one column (todo, doing, done)")
	return cmd
}

func newTasksAddCmd(g *globalFlags) *cobra.Command {
	var description, column string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := task.ParseColumn(column)
			if err != nil {
				return err
			}

			return withBoard(cmd, g, func(ctx context.Context, client *gateway.Client, store *board.Store) error {
				create, err := board.Create(client, c, args[0], description)
				if err != nil {
					return err
				}
				created := create(ctx)
				if err := store.ApplyCreated(created); err != nil {
					return err
				}
				t, loc, err := findTask(store, created.Task.ID.String())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created task #%s in %s\n", t.ID, loc.Column.Title())
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&column, "column", task.Todo.Key(), "Column to add the task to (todo, doing, done)")
	return cmd
}

func newTasksMoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <column>",
		Short: "Move a task to the end of another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := task.ParseColumn(args[1])
			if err != nil {
				return err
			}

			return withBoard(cmd, g, func(ctx context.Context, client *gateway.Client, store *board.Store) error {
				t, src, err := findTask(store, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if src.Column == dest {
					fmt.Fprintf(out, "Task #%s is already in %s\n", t.ID, dest.Title())
					return nil
				}

				drop := board.Location{Column: dest, Index: store.Grouping().LaneLen(dest)}
				effect := board.NewInterpreter(store, client).Interpret(board.DragResult{
					TaskID:      t.ID,
					Source:      src,
					Destination: &drop,
				})
				if effect == nil {
					return fmt.Errorf("task #%s could not be moved", t.ID)
				}

				res := effect(ctx)
				store.Reconcile(res)
				if res.Err != nil {
					return fmt.Errorf("failed to persist status: %w", res.Err)
				}
				fmt.Fprintf(out, "Moved task #%s to %s\n", t.ID, dest.Title())
				return nil
			})
		},
	}
}

func newTasksEditCmd(g *globalFlags) *cobra.Command {
	var title, description, status string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, description or status of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("description") && !flags.Changed("status") {
				return errNothingToChange
			}

			return withBoard(cmd, g, func(ctx context.Context, client *gateway.Client, store *board.Store) error {
				t, _, err := findTask(store, args[0])
				if err != nil {
					return err
				}

				session := detail.New(store, client)
				if err := session.Open(t); err != nil {
					return err
				}
				fields := session.Working()
				if flags.Changed("title") {
					fields.Title = title
				}
				if flags.Changed("description") {
					fields.Description = description
				}
				if flags.Changed("status") {
					fields.Status = statusArg(status)
				}

				save, err := session.Save(fields)
				if err != nil {
					return err
				}
				if err := session.Finish(save(ctx)); err != nil {
					return err
				}

				saved, loc, err := findTask(store, t.ID.String())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%s (%s): %s\n", saved.ID, loc.Column.Title(), saved.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&status, "status", "", "New status, or a column key (todo, doing, done)")
	return cmd
}

// statusArg accepts a column key as shorthand for its status.
func statusArg(s string) string {
	if c, err := task.ParseColumn(s); err == nil {
		return c.Status()
	}
	return s
}

func newTasksRmCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd, g, func(ctx context.Context, client *gateway.Client, store *board.Store) error {
				t, _, err := findTask(store, args[0])
				if err != nil {
					return err
				}

				session := detail.New(store, client)
				if err := session.Open(t); err != nil {
					return err
				}
				remove, err := session.Delete()
				if err != nil {
					return err
				}
				if err := session.Finish(remove(ctx)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%s\n", t.ID)
				return nil
			})
		},
	}
}
