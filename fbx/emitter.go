package fbx

import (
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Emitter writes an FBX document from a stream of node events.
//
// A document is StartDocument, any number of balanced StartNode/EndNode
// pairs and Comment calls, then EndDocument. Nothing is buffered: each call
// writes what can be decided at that point. After an error the document
// is abandoned and every call returns that error until the next StartDocument.
type Emitter interface {
	StartDocument(v Version) error
	EndDocument() error
	StartNode(name string, props ...Property) error
	EndNode() error
	Comment(text string) error
}

type nodeState struct {
	hasProps bool
	hasChild bool

	endOffsetPos int64 // binary only
}

// nodeStack holds one entry per open node.
type nodeStack []nodeState

func (s *nodeStack) push(st nodeState) {
	*s = append(*s, st)
}

func (s *nodeStack) pop() (nodeState, bool) {
	if len(*s) == 0 {
		return nodeState{}, false
	}
	st := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return st, true
}

// markChild records that the innermost open node has a child.
// It returns true when that is its first child.
func (s nodeStack) markChild() bool {
	if len(s) == 0 {
		return false
	}
	top := &s[len(s)-1]
	first := !top.hasChild
	top.hasChild = true
	return first
}

// documentState is the per-document bookkeeping shared by the emitters.
type documentState struct {
	stack   nodeStack
	version Version
	started bool
	err     error
	logger  log.Logger
}

func newDocumentState() documentState {
	return documentState{logger: log.NewNopLogger()}
}

// SetLogger sets the logger used for diagnostics. nil disables logging.
func (d *documentState) SetLogger(l log.Logger) {
	if l == nil {
		l = log.NewNopLogger()
	}
	d.logger = l
}

// Depth returns the number of open nodes.
func (d *documentState) Depth() int {
	return len(d.stack)
}

func (d *documentState) begin(v Version) error {
	if d.started && d.err == nil {
		return d.fail(contractError("StartDocument called inside a document"))
	}
	if err := v.Validate(); err != nil {
		level.Error(d.logger).Log("msg", "unsupported fbx version", "version", uint32(v))
		return err
	}
	d.stack = d.stack[:0]
	d.version = v
	d.started = true
	d.err = nil
	return nil
}

// check returns the sticky error, or a contract error outside a document.
func (d *documentState) check(op string) error {
	if d.err != nil {
		return d.err
	}
	if !d.started {
		return contractError("%s called outside a document", op)
	}
	return nil
}

func (d *documentState) fail(err error) error {
	if err != nil && d.err == nil {
		d.err = err
	}
	return err
}

func (d *documentState) finish() error {
	if len(d.stack) > 0 {
		return d.fail(contractError("EndDocument called with %d open nodes", len(d.stack)))
	}
	d.started = false
	return nil
}

func checkNodeName(name string) error {
	if name == "" {
		return contractError("empty node name")
	}
	return nil
}

// positionWriter counts written bytes and keeps the first error.
type positionWriter struct {
	w        io.Writer
	position int64
	err      error
}

func (w *positionWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.position += int64(n)
	if err != nil {
		w.err = ioError(w.position, err, "write")
	}
	return n, w.err
}

func (w *positionWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
