package spice

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-lvs/pkg/netlist"
)

// SnappyExt marks netlists stored as snappy framed streams
const SnappyExt = ".sz"

// openSource opens a netlist file for reading. Plain files are memory
// mapped; files ending in SnappyExt are decompressed on the fly.
func openSource(path string) (io.ReadCloser, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, netlist.NewError("Open").At(path, 0).Cause(netlist.ErrFileNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if strings.HasSuffix(path, SnappyExt) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return &snappySource{Reader: snappy.NewReader(f), file: f}, nil
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	return &mappedSource{
		SectionReader: io.NewSectionReader(m, 0, int64(m.Len())),
		m:             m,
	}, nil
}

type mappedSource struct {
	*io.SectionReader
	m *mmap.ReaderAt
}

func (s *mappedSource) Close() error {
	return s.m.Close()
}

type snappySource struct {
	*snappy.Reader
	file *os.File
}

func (s *snappySource) Close() error {
	return s.file.Close()
}
