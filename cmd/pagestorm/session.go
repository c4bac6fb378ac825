package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/pagestorm/internal/config"
	"github.com/dshills/pagestorm/internal/engine"
	"github.com/dshills/pagestorm/internal/engine/backing"
	"github.com/dshills/pagestorm/internal/engine/layout"
	"github.com/dshills/pagestorm/internal/engine/page"
	"github.com/dshills/pagestorm/internal/reu"
	"github.com/dshills/pagestorm/internal/vfs"
)

// session owns the resources behind one engine: the unit's medium and the
// spill store used when no unit is attached.
type session struct {
	Engine *engine.Engine

	medium io.Closer
	spill  *page.SpillStore
	logger *slog.Logger
}

func newSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	s := &session{logger: logger}

	store, err := s.openDevice(cfg.Device())
	if err != nil {
		return nil, err
	}

	pc := cfg.Paging()
	opts := []engine.Option{
		engine.WithGeometry(pc.PageCapacity, pc.MaxLineLength),
		engine.WithWrapWidth(pc.WrapWidth),
		engine.WithViewHeight(cfg.Editor().ViewHeight),
		engine.WithUndoLevels(cfg.Undo().Levels),
		engine.WithMaxPages(pc.MaxPages),
		engine.WithStore(store),
		engine.WithLogger(logger),
	}

	if !store.Available() && pc.Spill {
		g := layout.Geometry{PageCapacity: pc.PageCapacity, LineLength: pc.MaxLineLength}
		dir := pc.SpillDir
		if dir == "" {
			dir = filepath.Join(os.TempDir(), "pagestorm")
		}
		spill, err := page.NewSpillStore(vfs.NewOSFS(), dir, g, pc.MaxPages)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("spill store: %w", err)
		}
		s.spill = spill
		opts = append(opts, engine.WithPageStore(spill))
		logger.Info("paging to spill files", "dir", dir, "session", spill.Session())
	}

	eng, err := engine.New(opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Engine = eng
	return s, nil
}

// openDevice attaches the expansion unit the config describes, or returns
// backing.Nop when it is disabled or not detected.
func (s *session) openDevice(dc config.DeviceConfig) (backing.Store, error) {
	if !dc.Enabled {
		return backing.Nop{}, nil
	}

	var medium reu.Medium
	switch dc.Medium {
	case config.MediumFile:
		path, remove := dc.Path, false
		if path == "" {
			path = filepath.Join(os.TempDir(), "pagestorm-"+uuid.NewString()+".swap")
			remove = true
		}
		fm, err := reu.OpenFileMedium(path, int64(dc.Size), remove)
		if err != nil {
			return nil, fmt.Errorf("swap file: %w", err)
		}
		s.medium = fm
		medium = fm
	default:
		medium = reu.NewMemoryMedium(int64(dc.Size))
	}

	unit := reu.NewUnit(medium)
	opts := []backing.Option{
		backing.WithMaxTransfer(dc.MaxTransfer),
		backing.WithLogger(s.logger),
	}
	if dc.Probe {
		opts = append(opts, backing.WithProbe(dc.MaxBanks))
	} else {
		opts = append(opts, backing.WithCapacity(int64(dc.Size)))
	}

	store, err := backing.Open(unit, unit.Host(), opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.logger.Info("expansion unit attached",
		"medium", dc.Medium,
		"capacity", store.Capacity())
	return store, nil
}

// Close removes spill files and releases the medium.
func (s *session) Close() error {
	var errs []error
	if s.spill != nil {
		if err := s.spill.ClearAll(); err != nil {
			errs = append(errs, err)
		}
		s.spill = nil
	}
	if s.medium != nil {
		if err := s.medium.Close(); err != nil {
			errs = append(errs, err)
		}
		s.medium = nil
	}
	return errors.Join(errs...)
}
