package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tamirms/packedtrie"
)

var buildOpts struct {
	output   string
	optimize bool
	pool     bool
	foldMin  int
	foldMax  int
	noMarker bool
}

// buildCmd builds a trie from word lists, one word per line.
var buildCmd = &cobra.Command{
	Use:   "build [wordfile...]",
	Short: "Build a trie file from word lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		words, err := readWords(args)
		if err != nil {
			return err
		}

		opts := []packedtrie.BuildOption{
			packedtrie.WithOptimize(buildOpts.optimize),
			packedtrie.WithStringPool(buildOpts.pool),
			packedtrie.WithFoldMinLength(buildOpts.foldMin),
			packedtrie.WithFoldMaxLength(buildOpts.foldMax),
			packedtrie.WithLogger(logger),
		}
		if buildOpts.noMarker {
			opts = append(opts, packedtrie.WithMarkers(packedtrie.Markers{}))
		}

		start := time.Now()
		b := packedtrie.NewBuilder(opts...)
		for _, w := range words {
			if err := b.Insert(w); err != nil {
				return fmt.Errorf("insert %q: %w", w, err)
			}
		}
		trie, err := b.Build()
		if err != nil {
			return err
		}
		if err := trie.Save(buildOpts.output); err != nil {
			return err
		}

		st := trie.Stats()
		logger.Info().
			Str("output", buildOpts.output).
			Int("words", st.Words).
			Int("nodes", st.Nodes).
			Int("pool_bytes", st.PoolBytes).
			Dur("elapsed", time.Since(start)).
			Msg("trie written")
		return nil
	},
}

func init() {
	f := buildCmd.Flags()
	f.StringVarP(&buildOpts.output, "output", "o", "words.trie", "output file")
	f.BoolVar(&buildOpts.optimize, "optimize", false, "merge equal subtrees")
	f.BoolVar(&buildOpts.pool, "pool", false, "fold unbranching chains into a string pool")
	f.IntVar(&buildOpts.foldMin, "fold-min", 2, "shortest folded chain in bytes")
	f.IntVar(&buildOpts.foldMax, "fold-max", 255, "longest folded chain in bytes")
	f.BoolVar(&buildOpts.noMarker, "no-markers", false, "disable dictionary markers")
	rootCmd.AddCommand(buildCmd)
}
