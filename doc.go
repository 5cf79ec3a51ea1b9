// Package packedtrie implements the word store of a spell checker: a trie
// packed into one []uint32, minimized into a DAWG and optionally folded
// so that unbranching suffix runs live in a shared byte pool.
//
// # Basic Usage
//
// Building a trie:
//
//	b := packedtrie.NewBuilder(packedtrie.WithOptimize(true), packedtrie.WithStringPool(true))
//	for _, w := range words {
//	    if err := b.Insert(w); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	trie, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := trie.Save("words.trie"); err != nil {
//	    log.Fatal(err)
//	}
//
// Querying a trie:
//
//	trie, err := packedtrie.Open("words.trie")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(trie.Has("walk"), trie.Find("Walk", false))
//	for w := range trie.Seq("wal") {
//	    fmt.Println(w)
//	}
//
// # Node Encoding
//
// A node is a header word followed by one word per child:
//
//	header: foldRef (23 bits) | eow (1 bit) | numChildren (8 bits)
//	child:  target  (24 bits) | edgeByte (8 bits)
//
// Characters are stored as their UTF-8 bytes, one edge per byte. NFC and
// NFD spellings of a character share one byte sequence.
//
// # Package Structure
//
//   - Public API: builder.go (NewBuilder, Insert, Build), cursor.go
//     (character-level import), trie.go, find.go, walker.go, treeview.go
//   - Configuration: builder_options.go (BuildOption, EncodeOption)
//   - Minimization: minimize.go (structural merge, compaction), fold.go
//     (suffix folding)
//   - Serialization: codec.go (EncodeBin, DecodeBin), file.go (Save, Open)
//   - Internals: internal/encoding (record words), internal/charindex,
//     internal/strpool, internal/container (binary container), internal/bits
//   - Platform: fallocate_*.go, fadvise_*.go, prefault_*.go
package packedtrie
