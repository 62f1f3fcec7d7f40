package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/sonlib/matrix"
	"github.com/katalvlaran/sonlib/phylogeny"
	"github.com/katalvlaran/sonlib/tree"
)

// readMatrix parses one matrix row per line, cells separated by blanks.
// Blank lines and lines starting with '#' are skipped.
func readMatrix(r io.Reader) (*matrix.Dense, error) {
	var rows [][]float64
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return matrix.NewDenseFrom(rows)
}

func (a *app) loadMatrix(cmd *cobra.Command, args []string) (*matrix.Dense, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	in, err := openInput(cmd, path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	m, err := readMatrix(in)
	if err != nil {
		return nil, fmt.Errorf("read matrix %q: %w", path, err)
	}
	a.log.WithField("taxa", m.Rows()).Debug("matrix loaded")

	return m, nil
}

func newNJCmd(a *app) *cobra.Command {
	var (
		outgroups   []int
		similarity  bool
		jukesCantor bool
	)
	cmd := &cobra.Command{
		Use:   "nj [matrix-file]",
		Short: "Build a neighbor-joining tree from a distance matrix",
		Long: "Reads a square matrix (stdin when no file is given) and prints the rooted\n" +
			"neighbor-joining tree in Newick. Leaves are labelled by matrix index.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dist, err := a.loadMatrix(cmd, args)
			if err != nil {
				return err
			}
			if similarity {
				if dist, err = phylogeny.DistanceMatrixFromSimilarity(dist); err != nil {
					return err
				}
			}
			if jukesCantor {
				if err := phylogeny.ApplyJukesCantorCorrection(dist); err != nil {
					return err
				}
			}
			t, err := phylogeny.NeighborJoin(dist, outgroups)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tree.Newick(t.Root))

			return nil
		},
	}
	cmd.Flags().IntSliceVarP(&outgroups, "outgroup", "o", nil, "matrix indices of outgroup taxa")
	cmd.Flags().BoolVarP(&similarity, "similarity", "s", false, "input holds similarity counts above and difference counts below the diagonal")
	cmd.Flags().BoolVarP(&jukesCantor, "jukes-cantor", "j", false, "apply the Jukes-Cantor correction to the distances")

	return cmd
}

func newSplitsCmd(a *app) *cobra.Command {
	var greedy bool
	cmd := &cobra.Command{
		Use:   "splits [matrix-file]",
		Short: "List the d-splits of a distance matrix",
		Long: "Prints every split with a positive isolation index as\n" +
			"\"left | right<TAB>index\", strongest first. With --greedy, prints the\n" +
			"greedy split decomposition tree instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dist, err := a.loadMatrix(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if greedy {
				t, err := phylogeny.GreedySplitDecomposition(dist)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, tree.Newick(t.Root))

				return nil
			}
			splits, err := phylogeny.Splits(dist)
			if err != nil {
				return err
			}
			a.log.WithField("splits", len(splits)).Debug("splits computed")
			for _, s := range splits {
				fmt.Fprintf(out, "%s | %s\t%s\n", joinInts(s.Left), joinInts(s.Right),
					strconv.FormatFloat(s.IsolationIndex, 'g', -1, 64))
			}

			return nil
		},
	}
	cmd.Flags().BoolVarP(&greedy, "greedy", "g", false, "print the greedy split decomposition tree")

	return cmd
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}

	return strings.Join(parts, " ")
}

func newReconcileCmd(a *app) *cobra.Command {
	var (
		geneNewick, speciesNewick, sep string
		reroot, nonBinary             bool
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a gene tree with a species tree",
		Long: "Maps every gene leaf to the species named by its label up to the\n" +
			"separator, reconciles the trees and prints the duplication and loss\n" +
			"counts followed by the gene tree with internal nodes labelled by species.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gene, err := tree.ParseNewick(geneNewick)
			if err != nil {
				return fmt.Errorf("gene tree: %w", err)
			}
			species, err := tree.ParseNewick(speciesNewick)
			if err != nil {
				return fmt.Errorf("species tree: %w", err)
			}
			leafToSpecies, err := phylogeny.MapLeavesToSpecies(gene, species, sep)
			if err != nil {
				return err
			}
			if reroot {
				if gene, err = phylogeny.RootByReconciliationAtMostBinary(gene, leafToSpecies); err != nil {
					return err
				}
				// Rerooting copies the tree; map the copy's leaves again.
				if leafToSpecies, err = phylogeny.MapLeavesToSpecies(gene, species, sep); err != nil {
					return err
				}
				a.log.WithField("root", tree.Newick(gene)).Debug("gene tree rerooted")
			}

			t := phylogeny.Wrap(gene)
			reconcile := phylogeny.ReconcileAtMostBinary
			if nonBinary {
				reconcile = phylogeny.ReconcileNonBinary
			}
			if err := reconcile(t, leafToSpecies, true); err != nil {
				return err
			}
			dups, losses, err := phylogeny.ReconciliationCostAtMostBinary(t)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "duplications\t%d\nlosses\t%d\n%s\n", dups, losses, tree.Newick(t.Root))

			return nil
		},
	}
	cmd.Flags().StringVarP(&geneNewick, "gene", "g", "", "gene tree in Newick (required)")
	cmd.Flags().StringVarP(&speciesNewick, "species", "s", "", "species tree in Newick (required)")
	cmd.Flags().StringVar(&sep, "sep", "-", "separator between the species name and the rest of a gene label")
	cmd.Flags().BoolVar(&reroot, "root", false, "first reroot the gene tree to minimise duplications and losses")
	cmd.Flags().BoolVar(&nonBinary, "non-binary", false, "reconcile polytomies by lineage overlap")
	_ = cmd.MarkFlagRequired("gene")
	_ = cmd.MarkFlagRequired("species")

	return cmd
}
