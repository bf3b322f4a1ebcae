package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"subforge/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status [task-id]",
		Short: "Show task status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open task store: %w", err)
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				task, err := st.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if task == nil {
					return fmt.Errorf("task %s not found", args[0])
				}
				printTaskDetail(out, task)
				return nil
			}

			tasks, err := st.ListTasks(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks.")
				return nil
			}
			fmt.Fprintln(out, renderTaskTable(tasks))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of tasks to list")
	return cmd
}

func renderTaskTable(tasks []*store.Task) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Task", "File", "Type", "Status", "Progress", "Updated"})
	for _, task := range tasks {
		tw.AppendRow(table.Row{
			task.TaskID,
			task.OriginalFilename,
			task.FileType,
			statusCell(task.Status),
			fmt.Sprintf("%d%%", task.Progress),
			task.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func statusCell(status store.Status) string {
	if !isTerminalOutput() {
		return string(status)
	}
	switch status {
	case store.StatusCompleted:
		return text.FgGreen.Sprint(status)
	case store.StatusError:
		return text.FgRed.Sprint(status)
	case store.StatusQueued:
		return text.FgYellow.Sprint(status)
	default:
		return text.FgCyan.Sprint(status)
	}
}

func isTerminalOutput() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printTaskDetail(out io.Writer, task *store.Task) {
	fmt.Fprintf(out, "Task:       %s\n", task.TaskID)
	fmt.Fprintf(out, "File:       %s (%s)\n", task.OriginalFilename, task.FileType)
	fmt.Fprintf(out, "Status:     %s (%d%%)\n", statusCell(task.Status), task.Progress)
	fmt.Fprintf(out, "Message:    %s\n", task.Message)
	if task.TargetLang != "" {
		fmt.Fprintf(out, "Translate:  %s\n", task.TargetLang)
	}
	fmt.Fprintf(out, "Model:      %s\n", task.ModelName)
	fmt.Fprintf(out, "Created:    %s\n", task.CreatedAt.Local().Format(time.RFC1123))
	if task.CompletedAt != nil {
		fmt.Fprintf(out, "Completed:  %s\n", task.CompletedAt.Local().Format(time.RFC1123))
	}
	if task.ProcessTime > 0 {
		fmt.Fprintf(out, "Duration:   %.1fs\n", task.ProcessTime)
	}
	if task.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:      %s\n", task.ErrorMessage)
	}
}
