// Command iridium-tx converts parsed Iridium frame lines (IRA, IBC, ISY) to
// RAW bitstream lines ready for transmission.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/jancona/iridiumtx/config"
	"github.com/jancona/iridiumtx/iridium"
	"github.com/jancona/iridiumtx/stats"
)

var (
	isDebugArg   *bool   = flag.BoolP("debug", "d", false, "Emit debug log messages")
	inArg        *string = flag.StringP("in", "i", "", "Parsed frame input (default stdin)")
	outArg       *string = flag.StringP("out", "o", "", "RAW output (default stdout)")
	logDestArg   *string = flag.String("log", "", "File for log (default stderr)")
	configArg    *string = flag.StringP("config", "c", "", "INI configuration file")
	dedupeArg    *bool   = flag.Bool("dedupe", false, "Drop repeated captures of the same burst")
	normalizeArg *bool   = flag.Bool("normalize-offsets", false, "Rewrite offsets relative to the first burst")
	helpArg      *bool   = flag.BoolP("help", "h", false, "Print arguments")
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
	if flag.CommandLine.Changed("normalize-offsets") {
		cfg.TX.NormalizeOffsets = *normalizeArg
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	dedupe := *dedupeArg
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
	out := io.Writer(os.Stdout)
	if *outArg != "" {
		f, err := os.Create(*outArg)
		if err != nil {
			log.Fatalf("Error creating output: %v", err)
		}
		defer f.Close()
		out = f
	}

	channels := stats.NewChannels()
	n, err := convert(in, out, cfg.TX, dedupe, channels)
	if err != nil {
		log.Fatalf("Error converting: %v", err)
	}
	freqs, counts := channels.Sorted()
	for i, f := range freqs {
		log.Printf("[INFO] %d Hz: %d bursts", f, counts[i])
	}
	log.Printf("[INFO] Wrote %d bursts", n)
}

// convert streams lines from in through the framers and writes one RAW line
// per message to out. Lines that fail to parse are logged and skipped.
func convert(in io.Reader, out io.Writer, cfg config.TX, dedupe bool, channels *stats.Channels) (int, error) {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		scanErr <- scanner.Err()
	}()

	frames := iridium.NewTransform(lines, frame, 16)
	source := frames.Source()
	if dedupe {
		source = iridium.NewDeduper(source, cfg.DedupeWindow).Source()
	}

	var norm iridium.OffsetNormalizer
	w := bufio.NewWriter(out)
	count := 0
	for msg := range source {
		if cfg.NormalizeOffsets {
			norm.Apply(msg)
		}
		channels.Add(msg.Phy.Frequency)
		if _, err := fmt.Fprintln(w, msg.Pretty()); err != nil {
			return count, err
		}
		count++
	}
	if err := w.Flush(); err != nil {
		return count, err
	}
	return count, <-scanErr
}

func frame(line string) []*iridium.Message {
	msg, err := iridium.ParseLine(line)
	switch {
	case errors.Is(err, iridium.ErrUnsupported):
		log.Printf("[DEBUG] Skipping %v", err)
		return nil
	case err != nil:
		log.Printf("[ERROR] %v", err)
		return nil
	case msg.Bitstream() == "":
		return nil
	}
	log.Printf("[DEBUG] %s %s %d bits", msg.Kind, msg.Direction, len(msg.Bitstream()))
	return []*iridium.Message{msg}
}
