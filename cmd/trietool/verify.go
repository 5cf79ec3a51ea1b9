package main

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/tamirms/packedtrie"
	"golang.org/x/sync/errgroup"
)

var verifyWorkers int

// verifyCmd checks that every word of a word list is stored. Lookups are
// spread over workers sharing one trie.
var verifyCmd = &cobra.Command{
	Use:   "verify <trie> <wordfile...>",
	Short: "Check that every listed word is stored",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		trie, err := packedtrie.Open(args[0])
		if err != nil {
			return err
		}
		words, err := readWords(args[1:])
		if err != nil {
			return err
		}

		workers := verifyWorkers
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		chunk := (len(words) + workers - 1) / workers

		var missing atomic.Int64
		g, ctx := errgroup.WithContext(cmd.Context())
		for start := 0; start < len(words); start += chunk {
			part := words[start:min(start+chunk, len(words))]
			g.Go(func() error {
				for i, w := range part {
					if i%4096 == 0 && ctx.Err() != nil {
						return ctx.Err()
					}
					w = strings.TrimSpace(w)
					if w == "" || trie.Has(w) {
						continue
					}
					missing.Add(1)
					logger.Debug().Str("word", w).Msg("missing")
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		logger.Info().
			Int("checked", len(words)).
			Int64("missing", missing.Load()).
			Int("workers", workers).
			Msg("verify finished")
		if n := missing.Load(); n > 0 {
			return fmt.Errorf("%d words missing", n)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().IntVar(&verifyWorkers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	rootCmd.AddCommand(verifyCmd)
}
