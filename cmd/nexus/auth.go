package main

import (
	"github.com/creativehub/nexus/pkg/api"
	"github.com/creativehub/nexus/pkg/prompter"
	"github.com/creativehub/nexus/pkg/service"
	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign up and sign out",
	}

	var login string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with your username or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if login == "" {
				if login, err = prompter.PromptString("Username or email: "); err != nil {
					return err
				}
			}
			password, err := prompter.PromptPassword("Password: ")
			if err != nil {
				return err
			}
			return service.NewAuthService().Login(login, password)
		},
	}
	loginCmd.Flags().StringVarP(&login, "login", "u", "", "Username or email")

	var req api.RegisterRequest
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Username == "" {
				if req.Username, err = prompter.PromptString("Username: "); err != nil {
					return err
				}
			}
			if req.Email == "" {
				if req.Email, err = prompter.PromptString("Email: "); err != nil {
					return err
				}
			}
			if req.Password, err = prompter.PromptPassword("Password: "); err != nil {
				return err
			}
			return service.NewAuthService().Register(req)
		},
	}
	registerCmd.Flags().StringVar(&req.Username, "username", "", "Username")
	registerCmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&req.DisplayName, "display-name", "", "Display name")

	cmd.AddCommand(loginCmd, registerCmd,
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored session",
			RunE: func(cmd *cobra.Command, args []string) error {
				return service.NewAuthService().Logout()
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed-in profile",
			RunE: func(cmd *cobra.Command, args []string) error {
				return service.NewAuthService().WhoAmI()
			},
		},
	)
	return cmd
}
