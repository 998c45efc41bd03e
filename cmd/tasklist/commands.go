package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chhz0/tasklist/config"
	"github.com/chhz0/tasklist/core"
	"github.com/chhz0/tasklist/export"
	"github.com/chhz0/tasklist/types"
)

// withApp 打开应用并在命令结束后释放
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(a *app) error) error {
	a, err := openApp(cmd.Context(), opts, false)
	if err != nil {
		return err
	}
	defer a.Close()
	a.warnLoad(cmd.ErrOrStderr())
	return fn(a)
}

// reportMutation 打印结果；持久化失败时内存修改随进程退出丢失，所以仍按失败返回
func reportMutation(cmd *cobra.Command, err error, done string) error {
	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), done)
		return nil
	}
	if core.IsWarning(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s in memory but not saved\n", done)
	}
	return err
}

func parseStatusFlag(s string) (types.Status, error) {
	st, err := types.ParseStatus(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errUsage, err)
	}
	return st, nil
}

func parseFilterFlag(s string) (types.Criterion, error) {
	if s == "" {
		return types.CriterionAll, nil
	}
	c, err := types.ParseCriterion(s)
	if err != nil {
		return types.Criterion{}, fmt.Errorf("%w: %v", errUsage, err)
	}
	return c, nil
}

// parsePosition 把从1开始的命令行位置转成主列表下标
func parsePosition(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: position must be a positive number, got %q", errUsage, arg)
	}
	return n - 1, nil
}

func newAddCmd(opts *globalOptions) *cobra.Command {
	var title, desc, status string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := parseStatusFlag(status)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				err := a.store.AddOrUpdate(cmd.Context(), title, desc, st)
				return reportMutation(cmd, err, fmt.Sprintf("added task %d", a.store.Len()))
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Pending, In Progress or Completed")
	return cmd
}

func newListCmd(opts *globalOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseFilterFlag(filter)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				a.store.SetFilter(c)
				renderList(cmd.OutOrStdout(), a.store)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "status", "s", "", "only show tasks with this status (All, Pending, In Progress, Completed)")
	return cmd
}

func renderList(w io.Writer, store *core.Store) {
	entries := store.Visible()
	if len(entries) == 0 {
		if store.Len() > 0 {
			fmt.Fprintf(w, "No tasks match %s.\n", store.Filter())
		} else {
			fmt.Fprintln(w, "No tasks available.")
		}
		return
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{strconv.Itoa(e.Position + 1), e.Task.Title, e.Task.Description, e.Task.Status.String()}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Title", "Description", "Status").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func newEditCmd(opts *globalOptions) *cobra.Command {
	var title, desc, status string
	cmd := &cobra.Command{
		Use:   "edit <position>",
		Short: "Update a task in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			var st types.Status
			if cmd.Flags().Changed("status") {
				if st, err = parseStatusFlag(status); err != nil {
					return err
				}
			}
			return withApp(cmd, opts, func(a *app) error {
				if err := a.store.BeginEdit(pos); err != nil {
					return err
				}
				d := a.store.Draft()
				if cmd.Flags().Changed("title") {
					d.Title = title
				}
				if cmd.Flags().Changed("description") {
					d.Description = desc
				}
				if cmd.Flags().Changed("status") {
					d.Status = st
				}
				err := a.store.AddOrUpdate(cmd.Context(), d.Title, d.Description, d.Status)
				return reportMutation(cmd, err, fmt.Sprintf("updated task %d", pos+1))
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&desc, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "new status")
	return cmd
}

func newRemoveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <position>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				err := a.store.Remove(cmd.Context(), pos)
				return reportMutation(cmd, err, fmt.Sprintf("removed task %d", pos+1))
			})
		},
	}
}

func newClearCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				n := a.store.Len()
				err := a.store.Clear(cmd.Context())
				return reportMutation(cmd, err, fmt.Sprintf("cleared %d tasks", n))
			})
		},
	}
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var format, filter, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as json, csv or pdf",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseFilterFlag(filter)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				a.store.SetFilter(c)
				data, err := export.New().Bytes(format, a.store.Visible(), c)
				if errors.Is(err, export.ErrUnknownFormat) {
					return fmt.Errorf("%w: %v", errUsage, err)
				}
				if err != nil {
					return err
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d tasks to %s\n", len(a.store.Visible()), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, csv or pdf")
	cmd.Flags().StringVarP(&filter, "status", "s", "", "only export tasks with this status")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	})
	return cmd
}
