package page

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dshills/pagestorm/internal/engine/layout"
	"github.com/dshills/pagestorm/internal/vfs"
)

// SpillStore keeps each page in its own newline-delimited file named
// <session>.P<index> under a spill directory. It serves as the page store
// when no backing device is present.
type SpillStore struct {
	fs       vfs.VFS
	dir      string
	session  string
	geometry layout.Geometry
	maxPages int
}

// NewSpillStore returns a spill store rooted at dir with a fresh session id.
// maxPages bounds the page index when positive.
func NewSpillStore(fsys vfs.VFS, dir string, g layout.Geometry, maxPages int) (*SpillStore, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("spill dir: %w", err)
	}
	if maxPages <= 0 {
		maxPages = math.MaxInt32
	}
	return &SpillStore{
		fs:       fsys,
		dir:      dir,
		session:  uuid.NewString(),
		geometry: g,
		maxPages: maxPages,
	}, nil
}

// Session returns the id prefixing every spill file.
func (s *SpillStore) Session() string {
	return s.session
}

// MaxPages implements Store.
func (s *SpillStore) MaxPages() int {
	return s.maxPages
}

func (s *SpillStore) path(index int) string {
	return s.fs.Join(s.dir, fmt.Sprintf("%s.P%d", s.session, index))
}

// Save implements Store.
func (s *SpillStore) Save(index int, lines [][]byte) error {
	if index < 0 || index >= s.maxPages {
		return fmt.Errorf("save page %d: %w", index, ErrPageOutOfRange)
	}
	if err := Validate(s.geometry, lines); err != nil {
		return fmt.Errorf("save page %d: %w", index, err)
	}
	if err := s.fs.WriteFile(s.path(index), vfs.JoinLines(lines), 0o600); err != nil {
		return fmt.Errorf("save page %d: %w", index, err)
	}
	return nil
}

// Load implements Store. A missing, empty or oversize file is corrupt.
func (s *SpillStore) Load(index int) ([][]byte, error) {
	if index < 0 || index >= s.maxPages {
		return nil, fmt.Errorf("load page %d: %w", index, ErrPageOutOfRange)
	}
	data, err := s.fs.ReadFile(s.path(index))
	if err != nil {
		return nil, fmt.Errorf("load page %d: %v: %w", index, err, ErrCorruptPage)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		return nil, fmt.Errorf("load page %d: truncated record: %w", index, ErrCorruptPage)
	}
	lines := vfs.SplitLines(data)
	if err := Validate(s.geometry, lines); err != nil {
		return nil, fmt.Errorf("load page %d: %v: %w", index, err, ErrCorruptPage)
	}
	return lines, nil
}

// ClearAll implements Store by removing every file of the session.
func (s *SpillStore) ClearAll() error {
	matches, err := s.fs.Glob(s.fs.Join(s.dir, s.session+".P*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := s.fs.Remove(m); err != nil {
			return fmt.Errorf("clear spill: %w", err)
		}
	}
	return nil
}
