package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tamirms/packedtrie"
)

// statsCmd prints size and marker information of a trie file.
var statsCmd = &cobra.Command{
	Use:   "stats <trie>",
	Short: "Show trie statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		trie, err := packedtrie.Open(args[0])
		if err != nil {
			return err
		}
		st := trie.Stats()
		usage := trie.MarkerUsage()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "File size       %d bytes\n", info.Size())
		fmt.Fprintf(out, "Words           %d\n", st.Words)
		fmt.Fprintf(out, "Nodes           %d\n", st.Nodes)
		fmt.Fprintf(out, "Packed words    %d\n", st.PackedWords)
		fmt.Fprintf(out, "Characters      %d\n", st.Characters)
		fmt.Fprintf(out, "Pool strings    %d (%d bytes)\n", st.PoolStrings, st.PoolBytes)
		if st.Words > 0 {
			fmt.Fprintf(out, "Bytes per word  %.2f\n", float64(info.Size())/float64(st.Words))
		}
		fmt.Fprintf(out, "Markers used    forbidden=%t compound=%t strip=%t suggest=%t\n",
			usage.Forbidden, usage.Compound, usage.Strip, usage.Suggest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
