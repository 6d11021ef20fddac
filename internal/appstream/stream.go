package appstream

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"appcatalog/internal/catalog"
)

// ErrNotApplicable is returned by Stream.Next for documents that are not
// desktop application entries (headers, runtimes, addons, ...).
var ErrNotApplicable = errors.New("not a desktop application")

// DocumentError reports a single document that could not be decoded. It
// matches catalog.ErrMalformedDocument under errors.Is.
type DocumentError struct {
	Index int
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d: %v", e.Index, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is matches catalog.ErrMalformedDocument.
func (e *DocumentError) Is(target error) bool {
	return target == catalog.ErrMalformedDocument
}

// Stream yields normalized records from a bulk feed one document at a time.
//
// Next returns io.EOF at the end of the feed, ErrNotApplicable for skipped
// documents and a *DocumentError for malformed ones; callers continue after
// either. Any other error means the feed cannot be read any further.
type Stream interface {
	Next() (catalog.App, error)
	Close() error
}

// openFeed opens path and transparently gunzips it when the content carries
// the gzip magic bytes.
func openFeed(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", catalog.ErrSourceUnavailable, path)
		}
		return nil, nil, fmt.Errorf("failed to open feed %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		_ = f.Close()
		return nil, nil, fmt.Errorf("failed to read feed %s: %w", path, err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, nil, fmt.Errorf("failed to open gzip feed %s: %w", path, err)
		}
		return zr, multiCloser{zr, f}, nil
	}
	return br, f, nil
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// YAMLStream reads a DEP-11 YAML document stream.
type YAMLStream struct {
	dec       *yaml.Decoder
	closer    io.Closer
	index     int
	mediaBase string
}

// OpenYAMLFeed opens a (possibly gzip-compressed) DEP-11 feed. A missing
// file yields an error matching catalog.ErrSourceUnavailable.
func OpenYAMLFeed(path string) (*YAMLStream, error) {
	r, c, err := openFeed(path)
	if err != nil {
		return nil, err
	}
	s := NewYAMLStream(r)
	s.closer = c
	return s, nil
}

// NewYAMLStream reads DEP-11 documents from r.
func NewYAMLStream(r io.Reader) *YAMLStream {
	return &YAMLStream{dec: yaml.NewDecoder(r)}
}

// Next implements Stream.
func (s *YAMLStream) Next() (catalog.App, error) {
	var node yaml.Node
	if err := s.dec.Decode(&node); err != nil {
		if err == io.EOF {
			return catalog.App{}, io.EOF
		}
		// Syntax errors leave the parser in an unusable state.
		return catalog.App{}, fmt.Errorf("yaml feed document %d: %w", s.index, err)
	}
	s.index++

	var doc YAMLComponent
	if err := node.Decode(&doc); err != nil {
		return catalog.App{}, &DocumentError{Index: s.index, Err: err}
	}
	if doc.IsHeader() {
		s.mediaBase = doc.MediaBaseURL
		return catalog.App{}, ErrNotApplicable
	}
	app, ok := FromYAML(doc, s.mediaBase)
	if !ok {
		return catalog.App{}, ErrNotApplicable
	}
	return app, nil
}

// Close implements Stream.
func (s *YAMLStream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// XMLStream reads <component> elements from an AppStream XML catalog.
type XMLStream struct {
	dec    *xml.Decoder
	closer io.Closer
	origin string
	index  int
}

// OpenXMLFeed opens a (possibly gzip-compressed) AppStream XML catalog for
// the given remote. A missing file yields an error matching
// catalog.ErrSourceUnavailable.
func OpenXMLFeed(path, origin string) (*XMLStream, error) {
	r, c, err := openFeed(path)
	if err != nil {
		return nil, err
	}
	s := NewXMLStream(r, origin)
	s.closer = c
	return s, nil
}

// NewXMLStream reads components from r, tagging them with origin.
func NewXMLStream(r io.Reader, origin string) *XMLStream {
	return &XMLStream{dec: xml.NewDecoder(r), origin: origin}
}

// Next implements Stream.
func (s *XMLStream) Next() (catalog.App, error) {
	for {
		tok, err := s.dec.Token()
		if err != nil {
			if err == io.EOF {
				return catalog.App{}, io.EOF
			}
			return catalog.App{}, fmt.Errorf("xml feed after component %d: %w", s.index, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "component" {
			continue
		}
		s.index++

		var c XMLComponent
		if err := s.dec.DecodeElement(&c, &se); err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return catalog.App{}, fmt.Errorf("xml feed component %d: %w", s.index, err)
			}
			return catalog.App{}, &DocumentError{Index: s.index, Err: err}
		}
		app, ok := FromXML(c, s.origin)
		if !ok {
			return catalog.App{}, ErrNotApplicable
		}
		return app, nil
	}
}

// Close implements Stream.
func (s *XMLStream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
