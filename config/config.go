// Package config loads the INI configuration shared by the iridium commands.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/logutils"
	"gopkg.in/ini.v1"

	"github.com/jancona/iridiumtx/iridium"
	"github.com/jancona/iridiumtx/stats"
)

type Log struct {
	Level string
	Dest  string
}

type Codec struct {
	Differential  string
	MaxUWDistance int
}

type TX struct {
	DedupeWindow     time.Duration
	NormalizeOffsets bool
}

type BER struct {
	Workers      int
	Granularity  int
	Dedupe       bool
	DedupeWindow time.Duration
	Kind         string
	Namespace    string
}

type Config struct {
	Log   Log
	Codec Codec
	TX    TX
	BER   BER
}

func Default() Config {
	return Config{
		Log:   Log{Level: "INFO"},
		Codec: Codec{Differential: iridium.Accumulate.String(), MaxUWDistance: iridium.DefaultMaxUWDistance},
		TX:    TX{DedupeWindow: 5 * time.Millisecond},
		BER: BER{
			Workers:      runtime.NumCPU(),
			Granularity:  stats.DefaultGranularity,
			DedupeWindow: 5 * time.Millisecond,
			Kind:         string(iridium.KindBroadcast),
			Namespace:    "iridium",
		},
	}
}

// Load reads an INI file. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return fromFile(f)
}

// Parse reads INI data from memory.
func Parse(data []byte) (Config, error) {
	f, err := ini.Load(data)
	if err != nil {
		return Config{}, err
	}
	return fromFile(f)
}

func fromFile(f *ini.File) (Config, error) {
	d := Default()
	c := Config{}

	s := f.Section("log")
	c.Log.Level = strings.ToUpper(s.Key("level").MustString(d.Log.Level))
	c.Log.Dest = s.Key("dest").MustString(d.Log.Dest)

	s = f.Section("codec")
	c.Codec.Differential = s.Key("differential").MustString(d.Codec.Differential)
	c.Codec.MaxUWDistance = s.Key("max_uw_distance").MustInt(d.Codec.MaxUWDistance)

	s = f.Section("tx")
	c.TX.DedupeWindow = time.Duration(s.Key("dedupe_window_ms").MustFloat64(d.TX.DedupeWindow.Seconds()*1000) * float64(time.Millisecond))
	c.TX.NormalizeOffsets = s.Key("normalize_offsets").MustBool(d.TX.NormalizeOffsets)

	s = f.Section("ber")
	c.BER.Workers = s.Key("workers").MustInt(d.BER.Workers)
	c.BER.Granularity = s.Key("granularity").MustInt(d.BER.Granularity)
	c.BER.Dedupe = s.Key("dedupe").MustBool(d.BER.Dedupe)
	c.BER.DedupeWindow = time.Duration(s.Key("dedupe_window_ms").MustFloat64(d.BER.DedupeWindow.Seconds()*1000) * float64(time.Millisecond))
	c.BER.Kind = strings.ToUpper(s.Key("kind").MustString(d.BER.Kind))
	c.BER.Namespace = s.Key("namespace").MustString(d.BER.Namespace)

	return c, c.Validate()
}

// Validate checks values that the commands cannot recover from.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "DEBUG", "INFO", "ERROR":
	default:
		return fmt.Errorf("log level %q: %w", c.Log.Level, iridium.ErrUnknownFieldValue)
	}
	if _, err := iridium.ParseDifferentialMode(c.Codec.Differential); err != nil {
		return err
	}
	if c.Codec.MaxUWDistance < 1 {
		return fmt.Errorf("max_uw_distance must be at least 1, got %d", c.Codec.MaxUWDistance)
	}
	if c.BER.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.BER.Workers)
	}
	if c.TX.DedupeWindow < 0 || c.BER.DedupeWindow < 0 {
		return fmt.Errorf("dedupe window must not be negative")
	}
	switch iridium.Kind(c.BER.Kind) {
	case iridium.KindBroadcast, iridium.KindRingAlert, iridium.KindSync:
	default:
		return fmt.Errorf("ber kind %q: %w", c.BER.Kind, iridium.ErrUnsupported)
	}
	return nil
}

// RepairOptions derives the receive side options.
func (c Config) RepairOptions() (iridium.RepairOptions, error) {
	mode, err := iridium.ParseDifferentialMode(c.Codec.Differential)
	if err != nil {
		return iridium.RepairOptions{}, err
	}
	return iridium.RepairOptions{Mode: mode, MaxUWDistance: c.Codec.MaxUWDistance}, nil
}

// SetupLogging routes the standard logger through a level filter. Messages
// carry a [DEBUG], [INFO] or [ERROR] prefix. The returned closer releases
// the log file, if any.
func SetupLogging(level, dest string) (io.Closer, error) {
	var w io.WriteCloser = nopCloser{os.Stderr}
	if dest != "" {
		f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log %s: %w", dest, err)
		}
		w = f
	}
	log.SetOutput(NewLevelFilter(level, w))
	log.Print("[DEBUG] Debug is on")
	return w, nil
}

// NewLevelFilter drops messages below level.
func NewLevelFilter(level string, w io.Writer) *logutils.LevelFilter {
	return &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "ERROR"},
		MinLevel: logutils.LogLevel(strings.ToUpper(level)),
		Writer:   w,
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
