package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abelbrown/herbal/internal/catalog"
	"github.com/abelbrown/herbal/internal/filter"
	"github.com/abelbrown/herbal/internal/session"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var (
		mode     string
		system   string
		asJSON   bool
		favsOnly bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Filter the catalog by disease or plant",
		Long: `Search matches the query as a case-insensitive substring. In disease
mode it looks at diseases and body systems; in plant mode at the name,
Latin name and parts used.`,
		Example: `  herbal search cold
  herbal search tul --mode plant
  herbal search --system skin --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := filter.ParseMode(mode)
			if err != nil {
				return err
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := e.optionalUser()
			if err != nil {
				return err
			}
			sess := e.newSession(cmd.Context(), user)
			sess.SetMode(m)
			if len(args) == 1 {
				sess.SetQuery(args[0])
			}
			sess.SetSystem(system)

			cards := sess.Cards()
			if favsOnly {
				cards = onlyFavorites(cards)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cards)
			}
			return printCards(cmd.OutOrStdout(), cards)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(filter.ModeDisease), "search mode: disease or plant")
	cmd.Flags().StringVarP(&system, "system", "s", "", "only plants acting on this body system")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print cards as JSON")
	cmd.Flags().BoolVar(&favsOnly, "favorites", false, "only the user's favorites")
	return cmd
}

func onlyFavorites(cards []session.Card) []session.Card {
	out := []session.Card{}
	for _, c := range cards {
		if c.Favorite {
			out = append(out, c)
		}
	}
	return out
}

func printCards(w io.Writer, cards []session.Card) error {
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, "No plants match.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range cards {
		star := " "
		if c.Favorite {
			star = "★"
		}
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", star, c.Name, c.LatinName,
			strings.Join(c.Diseases, ", "), strings.Join(c.Systems, ", "))
	}
	return tw.Flush()
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a plant's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			plants := e.loadCatalog(cmd.Context())
			p, ok := catalog.Find(plants, args[0])
			if !ok {
				return fmt.Errorf("no plant named %q", args[0])
			}
			d := catalog.Details(p)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), d.Text())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print details as JSON")
	return cmd
}

func newSystemsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List the body systems in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			for _, s := range catalog.Systems(e.loadCatalog(cmd.Context())) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
