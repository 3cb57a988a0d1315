package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	"github.com/viniciusth/fmindex"
)

type variant struct {
	name   string
	config func(b *fmindex.Builder, occ, sa int) *fmindex.Builder
}

var variants = map[string]variant{
	"sampled": {name: "sampled", config: func(b *fmindex.Builder, occ, sa int) *fmindex.Builder {
		return b.OccInterval(occ).SampleInterval(sa)
	}},
	"full_sa": {name: "full_sa", config: func(b *fmindex.Builder, occ, _ int) *fmindex.Builder {
		return b.OccInterval(occ).FullSuffixArray()
	}},
}

type memMonitor struct {
	maxAlloc atomic.Uint64
	stop     chan struct{}
	done     chan struct{}
}

func newMemMonitor() *memMonitor {
	mm := &memMonitor{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(mm.done)
		for {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			if m.Alloc > mm.maxAlloc.Load() {
				mm.maxAlloc.Store(m.Alloc)
			}
			select {
			case <-mm.stop:
				return
			default:
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()
	return mm
}

func (mm *memMonitor) Stop() uint64 {
	close(mm.stop)
	<-mm.done
	return mm.maxAlloc.Load()
}

func getCurrentAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func measureBuild(text []byte, v variant, occ, sa int, logger *slog.Logger) (time.Duration, uint64, uint64, *fmindex.Index) {
	runtime.GC()
	mm := newMemMonitor()
	start := time.Now()
	ix, err := v.config(fmindex.NewBuilder(text).WithLogger(logger), occ, sa).Build()
	if err != nil {
		logger.Error("build failed", "variant", v.name, "error", err)
		os.Exit(1)
	}
	dur := time.Since(start)
	peak := mm.Stop()
	runtime.GC()
	return dur, peak, getCurrentAlloc(), ix
}

func measureQuery(ix *fmindex.Index, patterns [][]byte, workers int) (time.Duration, int64, int64) {
	start := time.Now()
	hits, err := ix.MatchExactBatch(context.Background(), patterns, workers)
	if err != nil {
		panic(err)
	}
	dur := time.Since(start)
	var total, located int64
	for _, h := range hits {
		total += h.Count
		if h.Count > 0 {
			if _, ok := ix.Leftmost(h.Interval); ok {
				located++
			}
		}
	}
	return dur, total, located
}

func randomReference(r *rand.Rand, n int) []byte {
	text := make([]byte, n)
	for i := range text {
		text[i] = byte(r.Intn(4))
	}
	return text
}

func runBenchmark(v variant, n, occ, sa, p, q, workers, runs int, save string, comp fmindex.Compression, logger *slog.Logger) {
	for run := 0; run < runs; run++ {
		r := rand.New(rand.NewSource(int64(run)))
		text := randomReference(r, n)
		bt, bp, ba, ix := measureBuild(text, v, occ, sa, logger)

		patterns := make([][]byte, q)
		for i := range patterns {
			start := r.Intn(n - p + 1)
			patterns[i] = text[start : start+p]
		}
		qt, total, located := measureQuery(ix, patterns, workers)
		fmt.Printf("%s,%d,%d,%d,%d,%d,%d,%.0f,%d,%d,%.0f,%d,%d\n",
			v.name, n, ix.OccInterval(), ix.SampleInterval(), p, q, workers,
			float64(bt.Nanoseconds()), bp, ba,
			float64(qt.Nanoseconds()), total, located)

		if save != "" && run == 0 {
			if err := ix.SaveFile(save, comp); err != nil {
				logger.Error("save failed", "path", save, "error", err)
				os.Exit(1)
			}
			logger.Info("index saved", "path", save, "compression", comp)
		}
	}
}

func main() {
	variantName := flag.String("variant", "sampled", "Variant to benchmark")
	n := flag.Int("n", 0, "Reference length")
	occ := flag.Int("occ", fmindex.DefaultOccInterval, "Rows per rank checkpoint")
	sa := flag.Int("sa", fmindex.DefaultSampleInterval, "Suffix array sample interval")
	p := flag.Int("p", 0, "Pattern length")
	q := flag.Int("q", 0, "Number of queries")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "Concurrent query workers")
	runs := flag.Int("runs", 3, "Number of runs for averaging")
	save := flag.String("save", "", "Write the first built index to this file")
	compress := flag.String("compress", "zstd", "Index file compression: none, lz4 or zstd")
	verbose := flag.Bool("v", false, "Log construction phases")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if *n <= 0 || *p <= 0 || *q <= 0 || *p > *n {
		fmt.Println("Usage: go run main.go -variant=<variant> -n=<N> -p=<P> -q=<Q> [-occ=<OCC>] [-sa=<SA>] [-workers=<W>] [-runs=<runs>] [-save=<file> -compress=<codec>]")
		fmt.Println("Available variants:", variants)
		os.Exit(1)
	}

	v, ok := variants[*variantName]
	if !ok {
		fmt.Println("Invalid variant:", *variantName)
		os.Exit(1)
	}
	comp, err := fmindex.ParseCompression(*compress)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	runBenchmark(v, *n, *occ, *sa, *p, *q, *workers, *runs, *save, comp, logger)
}
