package main

import (
	"strings"

	clierrors "github.com/creativehub/nexus/pkg/errors"
	"github.com/creativehub/nexus/pkg/output"
	"github.com/creativehub/nexus/pkg/prompter"
	"github.com/creativehub/nexus/pkg/service"
	"github.com/spf13/cobra"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects"},
		Short:   "View and interact with projects",
	}

	idCmd := func(use, short string, run func(ps *service.ProjectService, id string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <project-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(service.NewProjectService(), args[0])
			},
		}
	}

	cmd.AddCommand(
		idCmd("show", "Show a project", func(ps *service.ProjectService, id string) error {
			return ps.Show(id)
		}),
		idCmd("like", "Like a project", func(ps *service.ProjectService, id string) error {
			return ps.SetLiked(id, true)
		}),
		idCmd("unlike", "Remove your like", func(ps *service.ProjectService, id string) error {
			return ps.SetLiked(id, false)
		}),
		idCmd("save", "Save a project to your collection", func(ps *service.ProjectService, id string) error {
			return ps.SetSaved(id, true)
		}),
		idCmd("unsave", "Remove a project from your collection", func(ps *service.ProjectService, id string) error {
			return ps.SetSaved(id, false)
		}),
		newProjectCommentCmd(),
		newProjectCommentsCmd(),
		newProjectDeleteCmd(),
		newSavedCmd(),
	)
	return cmd
}

func newProjectCommentCmd() *cobra.Command {
	var deleteID string
	cmd := &cobra.Command{
		Use:   "comment <project-id> [text...]",
		Short: "Comment on a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps := service.NewProjectService()
			if deleteID != "" {
				return ps.DeleteComment(deleteID)
			}
			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				var err error
				if text, err = prompter.PromptString("Comment: "); err != nil {
					return err
				}
			}
			if text == "" {
				return clierrors.ValidationError("content", "comment is empty")
			}
			return ps.Comment(args[0], text)
		},
	}
	cmd.Flags().StringVar(&deleteID, "delete", "", "Delete the comment with this ID instead")
	return cmd
}

func newProjectCommentsCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "comments <project-id>",
		Short: "List comments on a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewProjectService().ListComments(args[0], limit, offset)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Comments per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "Comments to skip")
	return cmd
}

func newProjectDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete one of your projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := prompter.PromptConfirm("Delete project " + args[0] + "?")
				if err != nil {
					return err
				}
				if !ok {
					output.PrintInfo("Cancelled")
					return nil
				}
			}
			return service.NewProjectService().Delete(args[0])
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newSavedCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List your saved projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewProjectService().ListSaved(limit, offset)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Projects per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "Projects to skip")
	return cmd
}
