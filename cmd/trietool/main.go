// Trietool builds, inspects and benchmarks packed trie files.
//
// Usage:
//
//	trietool build -o words.trie --optimize --pool words.txt
//	trietool has words.trie walk walked
//	trietool find words.trie Walking
//	trietool words words.trie --prefix wal
//	trietool stats words.trie
//	trietool verify words.trie words.txt --workers 8
//	trietool bench --words 1000000
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("trietool failed")
		os.Exit(1)
	}
}
