package main

import (
	"strings"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/service"
	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit profiles",
	}

	var (
		withProjects  bool
		limit, offset int
	)
	showCmd := &cobra.Command{
		Use:   "show <username>",
		Short: "Show a creator's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimPrefix(args[0], "@")
			ps := service.NewProfileService()
			if err := ps.Show(username); err != nil {
				return err
			}
			if withProjects {
				return ps.ListProjects(username, limit, offset)
			}
			return nil
		},
	}
	showCmd.Flags().BoolVar(&withProjects, "projects", false, "Also list published projects")
	showCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Projects per page")
	showCmd.Flags().IntVar(&offset, "offset", 0, "Projects to skip")

	var (
		displayName, bio, avatar, location, website string
		skills                                      []string
	)
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.NewProfileService().Update(profileUpdate(cmd, displayName, bio, avatar, location, website, skills))
		},
	}
	updateCmd.Flags().StringVar(&displayName, "display-name", "", "Display name")
	updateCmd.Flags().StringVar(&bio, "bio", "", "Short bio")
	updateCmd.Flags().StringVar(&avatar, "avatar-url", "", "Avatar image URL")
	updateCmd.Flags().StringVar(&location, "location", "", "Location")
	updateCmd.Flags().StringVar(&website, "website", "", "Website URL")
	updateCmd.Flags().StringSliceVar(&skills, "skills", nil, "Comma-separated skills")

	cmd.AddCommand(showCmd, updateCmd)
	return cmd
}

// profileUpdate sends only the flags that were given
func profileUpdate(cmd *cobra.Command, displayName, bio, avatar, location, website string, skills []string) api.ProfileUpdate {
	var update api.ProfileUpdate
	changed := cmd.Flags().Changed
	if changed("display-name") {
		update.DisplayName = &displayName
	}
	if changed("bio") {
		update.Bio = &bio
	}
	if changed("avatar-url") {
		update.AvatarURL = &avatar
	}
	if changed("location") {
		update.Location = &location
	}
	if changed("website") {
		update.Website = &website
	}
	if changed("skills") {
		update.Skills = &skills
	}
	return update
}
