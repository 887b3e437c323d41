package main

import (
	"bufio"
	"fmt"
	"strings"

	"bookshelf/internal/auth"

	"github.com/spf13/cobra"
)

func newRegisterCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			sess, err := a.api.Register(ctx, args[0], email, pw)
			if err != nil {
				return err
			}
			return a.startSession(cmd, sess)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username|email>",
		Short: "Log in and download the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			sess, err := a.api.Login(ctx, args[0], pw)
			if err != nil {
				return err
			}
			return a.startSession(cmd, sess)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (read from stdin when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and the cached collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.api.SetToken("")
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

// startSession persists the token and replaces the cached collection with
// the server's.
func (a *app) startSession(cmd *cobra.Command, sess auth.Session) error {
	if err := a.cache.SaveToken(sess.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	ctx, cancel := a.context(cmd)
	defer cancel()
	p, err := a.store.Refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%d books).\n", sess.User.Username, len(p.Collection))
	return nil
}

func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}
