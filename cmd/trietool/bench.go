package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tamirms/packedtrie"
)

var benchOpts struct {
	words      int
	seed       uint64
	optimize   bool
	pool       bool
	cpuprofile string
	memprofile string
}

// getMaxRSS returns the peak resident set size in bytes.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// Linux reports kilobytes, macOS bytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// randomWords generates n lowercase words of 3 to 14 letters. Words share
// prefixes and suffixes often enough for merging and folding to matter.
func randomWords(rng *rand.Rand, n int) []string {
	suffixes := []string{"", "s", "ed", "ing", "er", "ation", "ness"}
	words := make([]string, n)
	buf := make([]byte, 0, 32)
	for i := range words {
		buf = buf[:0]
		for range 3 + rng.IntN(9) {
			buf = append(buf, byte('a'+rng.IntN(26)))
		}
		buf = append(buf, suffixes[rng.IntN(len(suffixes))]...)
		words[i] = string(buf)
	}
	return words
}

// memorySampler tracks peak heap and RSS every 10ms. It reads
// runtime/metrics rather than ReadMemStats to avoid stop-the-world pauses.
type memorySampler struct {
	peakHeap atomic.Uint64
	peakRSS  atomic.Uint64
	done     chan struct{}
}

func startMemorySampler(baseHeap, baseRSS uint64) *memorySampler {
	s := &memorySampler{done: make(chan struct{})}
	s.peakHeap.Store(baseHeap)
	s.peakRSS.Store(baseRSS)
	go func() {
		samples := []metrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				storeMax(&s.peakHeap, samples[0].Value.Uint64())
				storeMax(&s.peakRSS, getMaxRSS())
			}
		}
	}()
	return s
}

func storeMax(v *atomic.Uint64, x uint64) {
	for {
		old := v.Load()
		if x <= old || v.CompareAndSwap(old, x) {
			return
		}
	}
}

// benchCmd measures build time, memory, file size and query latency on
// generated words.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark building and querying generated words",
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchOpts.words <= 0 {
			return fmt.Errorf("--words must be positive, got %d", benchOpts.words)
		}
		rng := rand.New(rand.NewPCG(benchOpts.seed, benchOpts.seed^0x9e3779b97f4a7c15))
		logger.Info().Int("words", benchOpts.words).Msg("generating words")
		words := randomWords(rng, benchOpts.words)

		tmpDir, err := os.MkdirTemp("", "trietool-bench-")
		if err != nil {
			return err
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()
		triePath := filepath.Join(tmpDir, "bench.trie")

		runtime.GC()
		var baseline runtime.MemStats
		runtime.ReadMemStats(&baseline)
		baselineRSS := getMaxRSS()
		sampler := startMemorySampler(baseline.Alloc, baselineRSS)

		if benchOpts.cpuprofile != "" {
			f, err := os.Create(benchOpts.cpuprofile)
			if err != nil {
				return fmt.Errorf("create CPU profile: %w", err)
			}
			defer func() { _ = f.Close() }()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("start CPU profile: %w", err)
			}
		}

		buildStart := time.Now()
		b := packedtrie.NewBuilder(
			packedtrie.WithOptimize(benchOpts.optimize),
			packedtrie.WithStringPool(benchOpts.pool),
			packedtrie.WithLogger(logger),
		)
		for _, w := range words {
			if err := b.Insert(w); err != nil {
				return err
			}
		}
		trie, err := b.Build()
		buildDuration := time.Since(buildStart)

		if benchOpts.cpuprofile != "" {
			pprof.StopCPUProfile()
		}
		if benchOpts.memprofile != "" {
			if err := writeHeapProfile(benchOpts.memprofile); err != nil {
				logger.Warn().Err(err).Msg("memory profile not written")
			}
		}
		close(sampler.done)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}

		var final runtime.MemStats
		runtime.ReadMemStats(&final)
		storeMax(&sampler.peakHeap, final.Alloc)
		storeMax(&sampler.peakRSS, getMaxRSS())
		peakHeap := sampler.peakHeap.Load() - baseline.Alloc
		peakRSS := sampler.peakRSS.Load() - baselineRSS

		if err := trie.Save(triePath); err != nil {
			return err
		}
		info, err := os.Stat(triePath)
		if err != nil {
			return err
		}
		trie, err = packedtrie.Open(triePath)
		if err != nil {
			return err
		}

		order := rng.Perm(len(words))
		for i := range min(10_000, len(words)) {
			_ = trie.Has(words[order[i]])
		}
		const numQueries = 100_000
		queryStart := time.Now()
		for i := range numQueries {
			_ = trie.Has(words[order[i%len(words)]])
		}
		queryDuration := time.Since(queryStart)
		avgLatency := float64(queryDuration.Nanoseconds()) / numQueries

		st := trie.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n")
		fmt.Fprintf(out, "╔═════════════════════╦════════════════╗\n")
		fmt.Fprintf(out, "║ Metric              ║ Value          ║\n")
		fmt.Fprintf(out, "╠═════════════════════╬════════════════╣\n")
		fmt.Fprintf(out, "║ Distinct words      ║ %14d ║\n", st.Words)
		fmt.Fprintf(out, "║ Nodes               ║ %14d ║\n", st.Nodes)
		fmt.Fprintf(out, "║ Pool bytes          ║ %14d ║\n", st.PoolBytes)
		fmt.Fprintf(out, "║ File size           ║ %11.2f MB ║\n", float64(info.Size())/1_000_000)
		fmt.Fprintf(out, "║ Bytes per word      ║ %14.2f ║\n", float64(info.Size())/float64(max(st.Words, 1)))
		fmt.Fprintf(out, "║ Build time          ║ %10.2f sec ║\n", buildDuration.Seconds())
		fmt.Fprintf(out, "║ Build throughput    ║ %8.2f M/sec ║\n", float64(len(words))/buildDuration.Seconds()/1_000_000)
		fmt.Fprintf(out, "║ Query latency       ║ %11.1f ns ║\n", avgLatency)
		fmt.Fprintf(out, "║ Peak heap memory    ║ %11.1f MB ║\n", float64(peakHeap)/1_000_000)
		fmt.Fprintf(out, "║ Peak RSS memory     ║ %11.1f MB ║\n", float64(peakRSS)/1_000_000)
		fmt.Fprintf(out, "╚═════════════════════╩════════════════╝\n")
		return nil
	},
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func init() {
	f := benchCmd.Flags()
	f.IntVar(&benchOpts.words, "words", 1_000_000, "number of generated words")
	f.Uint64Var(&benchOpts.seed, "seed", 1, "word generator seed")
	f.BoolVar(&benchOpts.optimize, "optimize", true, "merge equal subtrees")
	f.BoolVar(&benchOpts.pool, "pool", true, "fold unbranching chains")
	f.StringVar(&benchOpts.cpuprofile, "cpuprofile", "", "write CPU profile of the build phase")
	f.StringVar(&benchOpts.memprofile, "memprofile", "", "write heap profile after the build phase")
	rootCmd.AddCommand(benchCmd)
}
