// Command iridium-ber repairs captured RAW bursts and reports corrected bit
// errors and reception rate by SNR.
package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jancona/iridiumtx/config"
	"github.com/jancona/iridiumtx/iridium"
	"github.com/jancona/iridiumtx/stats"
)

var (
	isDebugArg *bool   = flag.BoolP("debug", "d", false, "Emit debug log messages")
	inArg      *string = flag.StringP("in", "i", "", "RAW input (default stdin)")
	outArg     *string = flag.StringP("out", "o", "", "YAML report (default stdout)")
	logDestArg *string = flag.String("log", "", "File for log (default stderr)")
	configArg  *string = flag.StringP("config", "c", "", "INI configuration file")
	metricsArg *string = flag.String("metrics", "", "Write Prometheus metrics to this text file")
	workersArg *int    = flag.IntP("workers", "w", 0, "Parallel repairs (default from config)")
	kindArg    *string = flag.StringP("kind", "k", "", "Frame kind to repair: IBC, IRA or ISY")
	dedupeArg  *bool   = flag.Bool("dedupe", false, "Count repeated captures of a burst once (default from config)")
	helpArg    *bool   = flag.BoolP("help", "h", false, "Print arguments")
)

func main() {
	flag.Parse()
	if *helpArg {
		flag.Usage()
		return
	}

	cfg, err := config.Load(*configArg)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *isDebugArg {
		cfg.Log.Level = "DEBUG"
	}
	if flag.CommandLine.Changed("log") {
		cfg.Log.Dest = *logDestArg
	}
	if *workersArg > 0 {
		cfg.BER.Workers = *workersArg
	}
	if *kindArg != "" {
		cfg.BER.Kind = strings.ToUpper(*kindArg)
	}
	if flag.CommandLine.Changed("dedupe") {
		cfg.BER.Dedupe = *dedupeArg
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logCloser, err := config.SetupLogging(cfg.Log.Level, cfg.Log.Dest)
	if err != nil {
		log.Fatalf("Error setting up logging: %v", err)
	}
	defer logCloser.Close()

	in := io.Reader(os.Stdin)
	if *inArg != "" {
		f, err := os.Open(*inArg)
		if err != nil {
			log.Fatalf("Error opening input: %v", err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	agg := stats.NewAggregator(cfg.BER.Granularity)
	if err := process(ctx, in, agg, cfg); err != nil {
		log.Fatalf("Error processing bursts: %v", err)
	}

	out := io.Writer(os.Stdout)
	if *outArg != "" {
		f, err := os.Create(*outArg)
		if err != nil {
			log.Fatalf("Error creating report: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := writeReport(out, agg.Summary()); err != nil {
		log.Fatalf("Error writing report: %v", err)
	}

	if *metricsArg != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(stats.NewCollector(agg, cfg.BER.Namespace))
		if err := prometheus.WriteToTextfile(*metricsArg, reg); err != nil {
			log.Fatalf("Error writing metrics: %v", err)
		}
	}
}

// process repairs every RAW line of in with at most cfg.BER.Workers repairs
// in flight and feeds the results to agg.
func process(ctx context.Context, in io.Reader, agg *stats.Aggregator, cfg config.Config) error {
	opts, err := cfg.RepairOptions()
	if err != nil {
		return err
	}
	kind := iridium.Kind(cfg.BER.Kind)
	seen := newSeenSet(cfg.BER.DedupeWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.BER.Workers)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if gctx.Err() != nil {
			break
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "RAW:") {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := iridium.ParseRawLine(line)
			if err == nil {
				var rep *iridium.BurstReport
				rep, err = iridium.RepairBurst(raw, kind, opts)
				if err == nil {
					if cfg.BER.Dedupe && !seen.add(rep) {
						log.Printf("[DEBUG] Duplicate burst %04x at %.4f", rep.Fingerprint, rep.Timestamp)
						return nil
					}
					agg.Add(rep)
					log.Printf("[DEBUG] %s %s errors:%d blocks:%v", rep.Kind, rep.Direction, rep.BitErrors, rep.BlockErrors)
					return nil
				}
			}
			agg.AddFailure(err)
			log.Printf("[DEBUG] %v", err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return scanner.Err()
}

type burstKey struct {
	fingerprint uint16
	length      int
}

// seenSet remembers the bursts already counted. Captures with the same
// fingerprint and length are repeats only when their timestamps are within
// window of each other.
type seenSet struct {
	window float64
	mu     sync.Mutex
	seen   map[burstKey][]float64
}

func newSeenSet(window time.Duration) *seenSet {
	return &seenSet{window: window.Seconds(), seen: map[burstKey][]float64{}}
}

// add reports whether rep is not a repeat of a burst already added.
func (s *seenSet) add(rep *iridium.BurstReport) bool {
	k := burstKey{rep.Fingerprint, rep.Length}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ts := range s.seen[k] {
		if math.Abs(rep.Timestamp-ts) <= s.window {
			return false
		}
	}
	s.seen[k] = append(s.seen[k], rep.Timestamp)
	return true
}

func writeReport(w io.Writer, s stats.Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}
