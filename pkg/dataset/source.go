package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// ErrUnsupportedSource is returned by ParseSource for unknown URI schemes.
var ErrUnsupportedSource = errors.New("unsupported dataset source")

// Source opens a graph dump for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source; a .sz or .snappy suffix marks the
	// content as a snappy stream.
	Name() string
}

// FileSource reads a local file through a read-only memory mapping.
type FileSource struct {
	Path string
}

// Name implements Source.
func (f FileSource) Name() string { return f.Path }

// Open implements Source.
func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := mmap.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return &mappedReader{
		Reader: io.NewSectionReader(m, 0, int64(m.Len())),
		m:      m,
	}, nil
}

type mappedReader struct {
	io.Reader
	m *mmap.ReaderAt
}

func (r *mappedReader) Close() error { return r.m.Close() }

// ReaderSource wraps an already open reader, such as stdin.
type ReaderSource struct {
	Label  string
	Reader io.Reader
}

// Name implements Source.
func (r ReaderSource) Name() string { return r.Label }

// Open implements Source. Closing the result does not close the wrapped reader.
func (r ReaderSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(r.Reader), nil
}

// ParseSource maps a location to a Source:
//
//	s3://bucket/key   S3Source
//	file:///path      FileSource
//	path              FileSource
func ParseSource(location string) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupportedSource)
	}
	if !strings.Contains(location, "://") {
		return FileSource{Path: location}, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	switch u.Scheme {
	case "file":
		return FileSource{Path: u.Path}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("%w: %s needs a bucket and a key", ErrUnsupportedSource, location)
		}
		return &S3Source{Bucket: u.Host, Key: key}, nil
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

// Compressed reports whether name denotes a snappy-framed stream.
func Compressed(name string) bool {
	return strings.HasSuffix(name, ".sz") || strings.HasSuffix(name, ".snappy")
}

// Load opens src and decodes its content, unwrapping snappy when the
// source name says so.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if Compressed(src.Name()) {
		r = snappy.NewReader(rc)
	}

	ds, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	return ds, nil
}
