package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tamirms/packedtrie"
)

// hasCmd prints whether each word is stored exactly.
var hasCmd = &cobra.Command{
	Use:   "has <trie> <word...>",
	Short: "Check exact membership",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		trie, err := packedtrie.Open(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range args[1:] {
			fmt.Fprintf(out, "%s\t%t\n", w, trie.Has(w))
		}
		return nil
	},
}

var findStrict bool

// findCmd runs a full lookup and prints every result flag.
var findCmd = &cobra.Command{
	Use:   "find <trie> <word...>",
	Short: "Look words up with compound and stripped fallbacks",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		trie, err := packedtrie.Open(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range args[1:] {
			r := trie.Find(w, findStrict)
			fmt.Fprintf(out, "%s\tfound=%t forbidden=%t compound=%t case=%t\n",
				w, r.Found, r.Forbidden, r.CompoundUsed, r.CaseMatched)
		}
		return nil
	},
}

var (
	wordsPrefix string
	wordsLimit  int
)

// wordsCmd lists stored words in byte order.
var wordsCmd = &cobra.Command{
	Use:   "words <trie>",
	Short: "List stored words",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		trie, err := packedtrie.Open(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		n := 0
		for w := range trie.Seq(wordsPrefix) {
			if wordsLimit > 0 && n == wordsLimit {
				break
			}
			fmt.Fprintln(out, w)
			n++
		}
		return nil
	},
}

func init() {
	findCmd.Flags().BoolVar(&findStrict, "strict", false, "skip the stripped subtree")
	wordsCmd.Flags().StringVar(&wordsPrefix, "prefix", "", "only words starting with prefix")
	wordsCmd.Flags().IntVar(&wordsLimit, "limit", 0, "stop after n words (0 = all)")
	rootCmd.AddCommand(hasCmd, findCmd, wordsCmd)
}
