package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"relief-go/internal/model"
	"relief-go/internal/relief"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and keep the session for later commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := newPrompter(cmd).Secret("Password: ")
		if err != nil {
			return err
		}

		a, err := newApp("login")
		if err != nil {
			return err
		}
		defer a.Close()

		u, ok, err := a.Auth().Login(args[0], password)
		if err == nil && !ok {
			err = errors.New("invalid username or password")
		}
		return finish(cmd, a.Outcome().Record(err, fmt.Sprintf("logged in as %s (%s)", u.Username, u.Role)))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("logout")
		if err != nil {
			return err
		}
		defer a.Close()

		return finish(cmd, a.Outcome().Record(a.Auth().Logout(), "logged out"))
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("whoami")
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.RequireUser()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s <%s>\n", u.Username, u.Role, u.Name, u.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		role, _ := cmd.Flags().GetString("role")
		question, _ := cmd.Flags().GetString("question")
		if role != "" && !model.Role(role).Valid() {
			return fmt.Errorf("unknown role %q (want admin, coordinator or volunteer)", role)
		}

		a, err := newApp("register")
		if err != nil {
			return err
		}
		defer a.Close()

		p := newPrompter(cmd)
		password, confirm, err := p.NewSecret("Password")
		if err != nil {
			return err
		}
		if err := relief.ValidateNewPassword(password, confirm, a.Auth().MinPasswordLength()); err != nil {
			return finish(cmd, a.Outcome().Record(err, ""))
		}
		if question == "" {
			if question, err = p.Line("Security question: "); err != nil {
				return err
			}
		}
		answer, err := p.Secret("Security answer: ")
		if err != nil {
			return err
		}

		u, err := a.Auth().Register(relief.Registration{
			Username:         args[0],
			Password:         password,
			Name:             name,
			Email:            email,
			Role:             model.Role(role),
			SecurityQuestion: question,
			SecurityAnswer:   answer,
		})
		return finish(cmd, a.Outcome().Record(err, fmt.Sprintf("registered %s (%s)", u.Username, u.Role)))
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover a forgotten password",
}

var recoverQuestionCmd = &cobra.Command{
	Use:   "question <username>",
	Short: "Show the security question of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("recover question")
		if err != nil {
			return err
		}
		defer a.Close()

		q, ok := a.Auth().SecurityQuestion(args[0])
		if !ok {
			return fmt.Errorf("user %s: %w", args[0], relief.ErrNotFound)
		}
		fmt.Fprintln(cmd.OutOrStdout(), q)
		return nil
	},
}

var recoverResetCmd = &cobra.Command{
	Use:   "reset <username>",
	Short: "Answer the security question and set a new password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("recover reset")
		if err != nil {
			return err
		}
		defer a.Close()

		q, ok := a.Auth().SecurityQuestion(args[0])
		if !ok {
			q = "Security question"
		}
		p := newPrompter(cmd)
		answer, err := p.Secret(q + " ")
		if err != nil {
			return err
		}
		password, confirm, err := p.NewSecret("New password")
		if err != nil {
			return err
		}
		if err := relief.ValidateNewPassword(password, confirm, a.Auth().MinPasswordLength()); err != nil {
			return finish(cmd, a.Outcome().Record(err, ""))
		}

		ok, err = a.Auth().RecoverPassword(args[0], answer, password)
		if err == nil && !ok {
			err = errors.New("unknown user or wrong answer")
		}
		return finish(cmd, a.Outcome().Record(err, "password updated for "+args[0]))
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Full name")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("role", "", "Role: admin, coordinator or volunteer (default volunteer)")
	registerCmd.Flags().String("question", "", "Security question (prompted when empty)")

	recoverCmd.AddCommand(recoverQuestionCmd)
	recoverCmd.AddCommand(recoverResetCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(recoverCmd)
}
