package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/bincodec/internal/auth"
	"github.com/danmuck/bincodec/internal/config"
	"github.com/danmuck/bincodec/internal/logging"
	"github.com/danmuck/bincodec/internal/metrics"
	"github.com/rs/zerolog/log"
)

const usage = `usage: bincodec <command> [flags]

commands:
  encode    write frames described by a TOML messages file
  decode    print frames as json, cbor or cbor diagnostic notation
  pack      encode a TOML list of typed values with the profile attrs
  unpack    decode raw bytes against the types of a TOML values file
  validate  check a profile file
  template  write a profile, messages or values template
`

func main() {
	logging.ConfigureRuntime()
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("bincodec failed")
		os.Exit(1)
	}
}

func run(cmd string, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	profilePath := fs.String("profile", "", "codec profile TOML (defaults apply when empty)")
	input := fs.String("input", "", "input file (stdin when empty)")
	output := fs.String("output", "", "output file (stdout when empty)")
	format := fs.String("format", "json", "decode output: json|cbor|diag")
	asHex := fs.Bool("hex", false, "pack/unpack: hex text instead of raw bytes")
	noValidate := fs.Bool("no-validate", false, "encode/decode: skip message schema validation")
	stats := fs.Bool("stats", false, "log frame counters when done")
	token := fs.String("token", "", "decode: require every frame to carry this auth token")
	kind := fs.String("kind", "profile", "template kind: profile|messages|values")
	force := fs.Bool("force", false, "template: overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profile, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}
	if !logging.SetLevel(profile.Log.Level) {
		log.Warn().Str("level", profile.Log.Level).Msg("ignoring unknown log level")
	}

	switch cmd {
	case "validate":
		log.Info().Str("profile", *profilePath).Str("attrs", profile.Attrs().String()).Msg("profile ok")
		return nil
	case "template":
		if *output == "" {
			return fmt.Errorf("template: -output is required")
		}
		if err := config.WriteTemplate(*output, *kind, *force); err != nil {
			return err
		}
		log.Info().Str("kind", *kind).Str("path", *output).Msg("wrote template")
		return nil
	}

	out := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch cmd {
	case "encode":
		if *input == "" {
			return fmt.Errorf("encode: -input messages file is required")
		}
		n, err := encodeMessages(profile, *input, out, !*noValidate)
		if err != nil {
			return err
		}
		log.Info().Int("frames", n).Msg("encoded")
	case "decode":
		in, closeIn, err := openInput(*input, stdin)
		if err != nil {
			return err
		}
		defer closeIn()
		var verifier auth.Validator
		if *token != "" {
			verifier = auth.StaticToken{Token: []byte(*token)}
		}
		if err := decodeFrames(profile, in, out, *format, !*noValidate, verifier); err != nil {
			return err
		}
	case "pack":
		if *input == "" {
			return fmt.Errorf("pack: -input values file is required")
		}
		if err := packValues(profile, *input, out, *asHex); err != nil {
			return err
		}
	case "unpack":
		if *input == "" {
			return fmt.Errorf("unpack: -input values file is required")
		}
		if err := unpackValues(profile, *input, stdin, out, *asHex); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}

	if *stats {
		logStats()
	}
	return nil
}

func loadProfile(path string) (config.Profile, error) {
	if path == "" {
		return config.DefaultProfile(), nil
	}
	return config.LoadProfile(path)
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func logStats() {
	samples, err := metrics.Snapshot()
	if err != nil {
		log.Warn().Err(err).Msg("metrics snapshot failed")
		return
	}
	for _, s := range samples {
		ev := log.Info().Str("metric", s.Name).Float64("value", s.Value)
		for k, v := range s.Labels {
			ev = ev.Str(k, v)
		}
		ev.Msg("stats")
	}
}
