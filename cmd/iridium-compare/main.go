// Command iridium-compare regenerates bitstreams from parsed frame lines and
// compares them with the RAW lines they were originally decoded from.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jancona/iridiumtx/config"
	"github.com/jancona/iridiumtx/iridium"
)

var (
	isDebugArg   *bool    = flag.BoolP("debug", "d", false, "Emit debug log messages")
	kindArg      *string  = flag.StringP("kind", "k", "IRA", "Frame kind to compare: IRA, ISY or IBC")
	thresholdArg *int     = flag.IntP("threshold", "t", 5, "Report lines differing in more than this many bits")
	toleranceArg *float64 = flag.Float64("tolerance", 0.01, "Maximum offset difference of matching lines")
	helpArg      *bool    = flag.BoolP("help", "h", false, "Print arguments")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] original.raw parsed.txt\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *helpArg || flag.NArg() != 2 {
		flag.Usage()
		return
	}
	level := "INFO"
	if *isDebugArg {
		level = "DEBUG"
	}
	if _, err := config.SetupLogging(level, ""); err != nil {
		log.Fatalf("Error setting up logging: %v", err)
	}

	orig, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error opening original: %v", err)
	}
	defer orig.Close()
	parsed, err := os.Open(flag.Arg(1))
	if err != nil {
		log.Fatalf("Error opening parsed: %v", err)
	}
	defer parsed.Close()

	c := comparer{
		kind:      iridium.Kind(strings.ToUpper(*kindArg)),
		threshold: *thresholdArg,
		tolerance: *toleranceArg,
	}
	res, err := c.compare(orig, parsed)
	if err != nil {
		log.Fatalf("Error comparing: %v", err)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		log.Fatalf("Error writing result: %v", err)
	}
}

type Difference struct {
	Line         int    `yaml:"line"`
	Original     string `yaml:"original"`
	Parsed       string `yaml:"parsed"`
	OriginalBits string `yaml:"original_bits"`
	ParsedBits   string `yaml:"parsed_bits"`
	BitErrors    int    `yaml:"bit_errors"`
	Indices      []int  `yaml:"indices,flow"`
}

type Result struct {
	Total       int          `yaml:"total"`
	Matched     int          `yaml:"matched"`
	Mismatched  int          `yaml:"mismatched"`
	Differences []Difference `yaml:"differences,omitempty"`
}

type comparer struct {
	kind      iridium.Kind
	threshold int
	tolerance float64
}

// lineTime is the capture second and offset of a line.
type lineTime struct {
	base   int64
	offset float64
}

func parseLineTime(line string) (lineTime, bool) {
	f := strings.Fields(line)
	if len(f) < 3 {
		return lineTime{}, false
	}
	parts := strings.Split(f[1], "-")
	if len(parts) < 2 {
		return lineTime{}, false
	}
	base, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return lineTime{}, false
	}
	off, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return lineTime{}, false
	}
	return lineTime{base, off}, true
}

// compare walks both inputs in time order. The side that lags is advanced
// until a pair with the same capture second and near offsets is found.
func (c comparer) compare(orig, parsed io.Reader) (Result, error) {
	var res Result
	so, sp := bufio.NewScanner(orig), bufio.NewScanner(parsed)
	so.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sp.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	okO, okP := so.Scan(), sp.Scan()
	for okO && okP {
		o, p := so.Text(), sp.Text()
		ot, ook := parseLineTime(o)
		pt, pok := parseLineTime(p)
		switch {
		case !ook || !pok || ot.base != pt.base:
			okO, okP = so.Scan(), sp.Scan()
			continue
		case ot.offset-pt.offset > c.tolerance || strings.HasPrefix(p, "ERR") || strings.HasPrefix(p, "LCW"):
			okP = sp.Scan()
			continue
		case pt.offset-ot.offset > c.tolerance || strings.HasPrefix(o, "ERR"):
			okO = so.Scan()
			continue
		}

		of, pf := strings.Fields(o), strings.Fields(p)
		if len(of) < 10 || len(pf) < 5 || of[6] != "100%" || pf[4] != "100%" {
			okO, okP = so.Scan(), sp.Scan()
			continue
		}
		if !strings.HasPrefix(p, string(c.kind)+":") {
			okP = sp.Scan()
			continue
		}
		msg, err := iridium.ParseLine(p)
		if err != nil {
			log.Printf("[ERROR] %v", err)
			okP = sp.Scan()
			continue
		}
		if msg.Bitstream() != "" {
			res.Total++
			// captured bits are in receive order
			got, want := iridium.FlipBits(msg.FullBitstream()), of[9]
			if got == want {
				res.Matched++
			} else if d := diff(want, got); len(d) > c.threshold {
				res.Mismatched++
				res.Differences = append(res.Differences, Difference{
					Line:         res.Total,
					Original:     o,
					Parsed:       p,
					OriginalBits: want,
					ParsedBits:   got,
					BitErrors:    len(d),
					Indices:      d,
				})
			}
		}
		okO, okP = so.Scan(), sp.Scan()
	}
	if err := so.Err(); err != nil {
		return res, err
	}
	return res, sp.Err()
}

// diff lists the differing positions over the common prefix.
func diff(a, b string) []int {
	var out []int
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] != b[i] {
			out = append(out, i)
		}
	}
	return out
}
