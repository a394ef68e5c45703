package fbx

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type Format int

const (
	FormatASCII Format = iota
	FormatBinary
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "ascii", "text":
		return FormatASCII, nil
	case "binary", "bin":
		return FormatBinary, nil
	}
	return 0, unimplementedError("output format %q", s)
}

func (f Format) String() string {
	if f == FormatBinary {
		return "binary"
	}
	return "ascii"
}

func (f *Format) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f Format) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

type WriterOptions struct {
	Format  Format  `yaml:"format"`
	Version Version `yaml:"version"`

	// CompressThreshold applies to binary output. 0 selects the default, negative disables compression.
	CompressThreshold int `yaml:"compress_threshold"`

	// Comments are written after the header of ASCII output.
	Comments []string `yaml:"comments"`

	Logger log.Logger `yaml:"-"`
}

func DefaultWriterOptions() *WriterOptions {
	return &WriterOptions{Format: FormatASCII, Version: DefaultVersion}
}

// LoadWriterOptions reads options from a YAML file. Missing fields keep their defaults.
func LoadWriterOptions(path string) (*WriterOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := DefaultWriterOptions()
	if err := yaml.UnmarshalStrict(data, opts); err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return opts, nil
}

// NewEmitter returns the emitter for opts.Format. Binary output requires an io.WriteSeeker.
func NewEmitter(w io.Writer, opts *WriterOptions) (Emitter, error) {
	if opts == nil {
		opts = DefaultWriterOptions()
	}
	switch opts.Format {
	case FormatASCII:
		e := NewASCIIEmitter(w)
		e.SetLogger(opts.Logger)
		return e, nil
	case FormatBinary:
		ws, ok := w.(io.WriteSeeker)
		if !ok {
			return nil, unimplementedError("binary output to a non-seekable %T", w)
		}
		e := NewBinaryEmitter(ws)
		e.SetLogger(opts.Logger)
		if opts.CompressThreshold > 0 {
			e.CompressThreshold = opts.CompressThreshold
		} else if opts.CompressThreshold < 0 {
			e.CompressThreshold = 0
		}
		return e, nil
	}
	return nil, unimplementedError("output format %d", int(opts.Format))
}

// Write writes nodes as a complete document.
func Write(w io.Writer, nodes []*Node, opts *WriterOptions) error {
	if opts == nil {
		opts = DefaultWriterOptions()
	}
	version := opts.Version
	if version == 0 {
		version = DefaultVersion
	}
	e, err := NewEmitter(w, opts)
	if err != nil {
		return err
	}
	return EmitDocument(e, version, nodes, opts.Comments...)
}

// EmitDocument drives e through a whole document.
func EmitDocument(e Emitter, version Version, nodes []*Node, comments ...string) error {
	if err := e.StartDocument(version); err != nil {
		return err
	}
	for _, c := range comments {
		if err := e.Comment(c); err != nil {
			return err
		}
	}
	for _, n := range nodes {
		if err := n.Emit(e); err != nil {
			return err
		}
	}
	return e.EndDocument()
}

// Save writes nodes to the file at path. The file is removed if writing fails.
func Save(path string, nodes []*Node, opts *WriterOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if opts == nil || opts.Format == FormatASCII {
		bw := bufio.NewWriter(f)
		if err := Write(bw, nodes, opts); err != nil {
			return err
		}
		return bw.Flush()
	}
	return Write(f, nodes, opts)
}
