package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lockbox/internal/catalog"
	"lockbox/internal/domain"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the embedded content packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Default()
			if err != nil {
				return err
			}
			return printPacks(cmd.OutOrStdout(), c.Packs())
		},
	}
	cmd.AddCommand(newSampleCmd())
	return cmd
}

func newSampleCmd() *cobra.Command {
	var (
		pack    string
		count   int
		exclude []string
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw locks the way a round would",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Default()
			if err != nil {
				return err
			}
			if !c.Has(pack) {
				return fmt.Errorf("unknown pack %q", pack)
			}

			var rng *rand.Rand
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			s := catalog.NewSelector(c, rng)

			items := s.SelectLocks(pack, exclude, count)
			return printItems(cmd.OutOrStdout(), s, items)
		},
	}

	cmd.Flags().StringVar(&pack, "pack", domain.MixedPack, "pack to draw from")
	cmd.Flags().IntVar(&count, "count", domain.DefaultLocksPerRound, "number of locks")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "tags to exclude")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for a repeatable draw")
	return cmd
}

func printPacks(w io.Writer, packs []catalog.PackInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTITLE\tITEMS\tTAGS")
	for _, p := range packs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.Name, p.Title, p.ItemCount, strings.Join(p.Tags, ","))
	}
	return tw.Flush()
}

func printItems(w io.Writer, s *catalog.Selector, items []domain.ContentItem) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDIFFICULTY\tKEY")
	for _, it := range items {
		key := "-"
		if k, ok := s.KeyFor(it.ID); ok {
			key = k.Title
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", it.ID, it.Title, it.Difficulty, key)
	}
	return tw.Flush()
}
