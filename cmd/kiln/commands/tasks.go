package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/core/domain"
)

var taskDescriptions = map[domain.Category]string{
	domain.CategoryMarkup: "Copy HTML documents to the output root",
	domain.CategoryStyle:  "Compile Sass stylesheets to expanded and minified CSS",
	domain.CategoryScript: "Bundle JavaScript modules into a single file",
	domain.CategoryImage:  "Compress images",
	domain.CategoryFont:   "Copy web fonts",
}

func (c *CLI) newTaskCmds() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		name := cat.TaskName()
		cmds = append(cmds, &cobra.Command{
			Use:   name,
			Short: taskDescriptions[cat],
			Long:  fmt.Sprintf("%s.\nRuns the %s task once without cleaning the output root.", taskDescriptions[cat], name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.app.RunTask(cmd.Context(), name, options(cmd))
			},
		})
	}
	return cmds
}

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   domain.CleanTaskName,
		Short: "Remove the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.RunTask(cmd.Context(), domain.CleanTaskName, options(cmd))
		},
	}
}

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Clean the output directory and run every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Build(cmd.Context(), options(cmd))
		},
	}
}
