package scripting

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultExt is the script file extension the reloader reacts to.
const DefaultExt = ".lua"

// EventSource yields debounced change events without blocking.
type EventSource interface {
	Poll() []WatchEvent
}

// Journal records the outcome of script loads. err is nil unless the load
// failed.
type Journal interface {
	RecordScriptLoad(name, hash, outcome string, err error) error
}

// ReloadResult is the outcome of one file considered by the reloader.
type ReloadResult struct {
	Name    string
	Path    string
	Outcome ReloadOutcome
	Err     error
}

// Reloader turns watcher events into interpreter reloads. It runs on the
// simulation goroutine.
type Reloader struct {
	rt      *Runtime
	src     EventSource
	ext     string
	journal Journal
	logger  *log.Logger
}

// NewReloader creates a reloader for script files with the given extension.
// An empty ext means DefaultExt. src may be nil, in which case Check is a
// no-op.
func NewReloader(rt *Runtime, src EventSource, ext string, logger *log.Logger) *Reloader {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Reloader{rt: rt, src: src, ext: ext, logger: logger}
}

// SetJournal attaches a load journal. Journal failures are logged and never
// affect the reload itself.
func (r *Reloader) SetJournal(j Journal) {
	r.journal = j
}

// ScriptName returns the name a script file is loaded under: its base name
// without extension.
func ScriptName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Check drains pending watcher events and reloads every changed script
// file. Removals and renames are ignored; the last loaded definitions stay
// in effect.
func (r *Reloader) Check() []ReloadResult {
	if r.src == nil {
		return nil
	}
	events := r.src.Poll()
	if len(events) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(events))
	var results []ReloadResult
	for _, ev := range events {
		if ev.Kind == EventRemove || ev.Kind == EventRename {
			r.logger.Debug("ignoring script change", "path", ev.Path, "kind", ev.Kind)
			continue
		}
		if !strings.EqualFold(filepath.Ext(ev.Path), r.ext) {
			continue
		}
		if seen[ev.Path] {
			continue
		}
		seen[ev.Path] = true
		results = append(results, r.ReloadFile(ScriptName(ev.Path), ev.Path))
	}
	return results
}

// ReloadFile reads path and reloads it under name.
func (r *Reloader) ReloadFile(name, path string) ReloadResult {
	res := ReloadResult{Name: name, Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = &LoadError{Name: name, Phase: PhaseRead, Err: err}
		r.report(res, "")
		return res
	}

	source := string(data)
	res.Outcome, res.Err = r.rt.Reload(name, source)
	r.report(res, Hash(source))
	return res
}

// LoadInitial loads the named scripts from dir in order. A missing file is
// skipped; any other failure is reported in the results and loading goes on.
func (r *Reloader) LoadInitial(dir string, names []string) []ReloadResult {
	results := make([]ReloadResult, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name+r.ext)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			r.logger.Debug("script not present", "script", name, "path", path)
			continue
		}
		results = append(results, r.ReloadFile(name, path))
	}
	return results
}

func (r *Reloader) report(res ReloadResult, hash string) {
	switch res.Outcome {
	case OutcomeUnchanged:
		r.logger.Debug("script unchanged", "script", res.Name)
		return
	case OutcomeFailed:
		r.logger.Error("script load failed", "script", res.Name, "error", res.Err)
	default:
		r.logger.Info("script "+res.Outcome.String(), "script", res.Name)
	}

	if r.journal == nil {
		return
	}
	if err := r.journal.RecordScriptLoad(res.Name, hash, res.Outcome.String(), res.Err); err != nil {
		r.logger.Warn("could not record script load", "script", res.Name, "error", err)
	}
}
