package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/herbal/internal/catalog"
	"github.com/abelbrown/herbal/internal/favorites"
	"github.com/abelbrown/herbal/internal/identity"
	"github.com/abelbrown/herbal/internal/session"
)

func newFavCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "List or toggle favorites",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the user's favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			if all {
				keys, err := e.kv.Keys(favorites.KeyPrefix)
				if err != nil {
					return err
				}
				for _, k := range keys {
					user := strings.TrimPrefix(k, favorites.KeyPrefix)
					reg, err := favorites.Load(e.kv, user)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s: %s\n", user, strings.Join(reg.Names(), ", "))
				}
				return nil
			}

			user, err := e.resolveUser()
			if err != nil {
				return err
			}
			reg, err := favorites.Load(e.kv, user)
			if err != nil {
				return err
			}
			for _, n := range reg.Names() {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&all, "all", false, "favorites of every user")

	toggle := &cobra.Command{
		Use:   "toggle <name>",
		Short: "Add a plant to favorites, or remove it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.resolveUser()
			if err != nil {
				return err
			}
			sess := e.newSession(cmd.Context(), user)
			if _, ok := catalog.Find(sess.Plants(), args[0]); !ok {
				return fmt.Errorf("no plant named %q", args[0])
			}
			on, err := sess.ToggleFavorite(args[0])
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintf(cmd.OutOrStdout(), "★ %s added to %s's favorites\n", args[0], user)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed from %s's favorites\n", args[0], user)
			}
			return nil
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}

func newLoginCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login [name]",
		Short: "Sign in; prompts for a name when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			var name string
			if len(args) == 1 {
				name = args[0]
			} else if name, err = identity.Prompt(); err != nil {
				return err
			}
			if err := identity.Login(e.kv, name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", strings.TrimSpace(name))
			return nil
		},
	}
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out (favorites are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := identity.Logout(e.kv); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newThemeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or set the theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			// The theme is not per user; no catalog needed.
			sess := session.New(nil, e.kv, "", e.sessionOptions())
			if len(args) == 1 {
				want := sess.Dark()
				switch args[0] {
				case "dark":
					want = true
				case "light":
					want = false
				case "toggle":
					want = !sess.Dark()
				default:
					return errors.New("theme must be dark, light or toggle")
				}
				if want != sess.Dark() {
					if _, err := sess.ToggleTheme(); err != nil {
						return err
					}
				}
			}

			name := "light"
			if sess.Dark() {
				name = "dark"
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}
