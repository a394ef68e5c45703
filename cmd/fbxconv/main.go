package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/fbxwriter/converter"
	"github.com/binzume/fbxwriter/fbx"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

func defaultOutputFile(input string) string {
	ext := filepath.Ext(input)
	return input[0:len(input)-len(ext)] + ".fbx"
}

type config struct {
	format  string
	version uint
	options string
	sjis    bool
	scale   float64
}

func writerOptions(conf *config, logger log.Logger) (*fbx.WriterOptions, error) {
	opts := fbx.DefaultWriterOptions()
	if conf.options != "" {
		var err error
		if opts, err = fbx.LoadWriterOptions(conf.options); err != nil {
			return nil, err
		}
	}
	if conf.format != "" {
		f, err := fbx.ParseFormat(conf.format)
		if err != nil {
			return nil, err
		}
		opts.Format = f
	}
	if conf.version != 0 {
		opts.Version = fbx.Version(conf.version)
	}
	opts.Logger = logger
	return opts, nil
}

// loadNodes reads a YAML node tree. Shift_JIS input is decoded to UTF-8 first.
func loadNodes(input string, sjis bool) ([]*fbx.Node, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	if sjis {
		if data, _, err = transform.Bytes(japanese.ShiftJIS.NewDecoder(), data); err != nil {
			return nil, &fbx.Error{Pos: -1, Kind: fbx.KindTextEncoding, Msg: "decode shift_jis", Err: err}
		}
	}
	return fbx.ParseYAMLNodes(data)
}

func convert(input, output string, conf *config, logger log.Logger) error {
	opts, err := writerOptions(conf, logger)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(input)) {
	case ".yaml", ".yml":
		nodes, err := loadNodes(input, conf.sjis)
		if err != nil {
			return err
		}
		return fbx.Save(output, nodes, opts)
	case ".glb", ".gltf", ".vrm":
		src, err := gltf.Open(input)
		if err != nil {
			return err
		}
		conv := converter.NewGLTFToFBXConverter(&converter.GLTFToFBXOption{
			Scale:  float32(conf.scale),
			Logger: log.With(logger, "component", "gltf2fbx"),
		})
		doc, err := conv.Convert(src)
		if err != nil {
			return err
		}
		return doc.Save(output, opts)
	}
	return errors.Errorf("unsupported input type: %v", filepath.Ext(input))
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.glb [output.fbx]\n", os.Args[0])
		flag.PrintDefaults()
	}
	conf := &config{}
	flag.StringVar(&conf.format, "format", "", "output format: ascii or binary")
	flag.UintVar(&conf.version, "version", 0, "fbx version (7000-7999)")
	flag.StringVar(&conf.options, "config", "", "writer options (.yaml)")
	flag.BoolVar(&conf.sjis, "sjis", false, "yaml input is Shift_JIS")
	flag.Float64Var(&conf.scale, "scale", 1, "scale for gltf input")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if *verbose {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	input := flag.Arg(0)
	output := defaultOutputFile(input)
	if flag.NArg() > 1 {
		output = flag.Arg(1)
	}

	if err := convert(input, output, conf, logger); err != nil {
		level.Error(logger).Log("msg", "conversion failed", "input", input, "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "saved", "output", output)
}
