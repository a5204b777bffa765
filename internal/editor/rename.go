// Package editor implements inline renaming of categories in the tree.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"jewelry/catalog/internal/domain"
	"jewelry/catalog/internal/slug"

	log "github.com/sirupsen/logrus"
)

var (
	ErrEmptyName      = errors.New("category name cannot be empty")
	ErrUnsluggable    = errors.New("category name must contain at least one letter or digit")
	ErrNotEditing     = errors.New("no category is being edited")
	ErrCommitInFlight = errors.New("rename is already being saved")
)

type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

// Keys recognised by KeyPress
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// Updater persists a rename
type Updater interface {
	RenameCategory(ctx context.Context, id string, payload domain.RenamePayload) error
}

// RefetchFunc reloads the tree after a successful rename
type RefetchFunc func(ctx context.Context) error

// RenameEditor is the viewing/editing state machine of one tree instance.
// At most one category is in editing state at a time.
type RenameEditor struct {
	updater   Updater
	onRenamed RefetchFunc

	mu         sync.Mutex
	state      State
	editingID  string
	staged     string
	committing bool
}

func NewRenameEditor(updater Updater, onRenamed RefetchFunc) *RenameEditor {
	return &RenameEditor{
		updater:   updater,
		onRenamed: onRenamed,
	}
}

// StartEdit stages currentName for id. Any uncommitted edit on another
// category is dropped without warning.
func (e *RenameEditor) StartEdit(id, currentName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Editing && e.editingID != id {
		log.Debugf("Abandoning uncommitted rename of %s", e.editingID)
	}

	e.state = Editing
	e.editingID = id
	e.staged = currentName
}

// SetStaged replaces the staged name of the category being edited
func (e *RenameEditor) SetStaged(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Editing {
		return ErrNotEditing
	}
	e.staged = name
	return nil
}

// Cancel discards the staged name. No request is made.
func (e *RenameEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset()
}

// Commit validates the staged name, derives its slug and saves both.
// Invalid names and failed saves leave the editor in editing state with the
// staged value intact. A successful save returns to viewing and refetches.
func (e *RenameEditor) Commit(ctx context.Context) error {
	e.mu.Lock()
	if e.state != Editing {
		e.mu.Unlock()
		return ErrNotEditing
	}
	if e.committing {
		e.mu.Unlock()
		return ErrCommitInFlight
	}

	id := e.editingID
	staged := e.staged
	name := strings.TrimSpace(staged)
	if name == "" {
		e.mu.Unlock()
		return ErrEmptyName
	}
	derived := slug.Make(name)
	if derived == "" {
		e.mu.Unlock()
		return ErrUnsluggable
	}

	e.committing = true
	e.mu.Unlock()

	err := e.updater.RenameCategory(ctx, id, domain.RenamePayload{Name: name, Slug: derived})

	e.mu.Lock()
	e.committing = false
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("failed to rename category %s: %w", id, err)
	}
	// Only leave editing if the user did not move on while the request ran
	if e.state == Editing && e.editingID == id && e.staged == staged {
		e.reset()
	}
	e.mu.Unlock()

	log.Infof("✏️ Renamed category %s to %q (%s)", id, name, derived)

	if e.onRenamed != nil {
		if err := e.onRenamed(ctx); err != nil {
			return fmt.Errorf("category renamed but refetch failed: %w", err)
		}
	}
	return nil
}

// KeyPress maps Enter to Commit and Escape to Cancel; other keys are ignored
func (e *RenameEditor) KeyPress(ctx context.Context, key string) error {
	switch key {
	case KeyEnter:
		return e.Commit(ctx)
	case KeyEscape:
		e.Cancel()
	}
	return nil
}

func (e *RenameEditor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// EditingID returns the id being edited, or "" while viewing
func (e *RenameEditor) EditingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID
}

func (e *RenameEditor) Staged() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.staged
}

func (e *RenameEditor) reset() {
	e.state = Viewing
	e.editingID = ""
	e.staged = ""
}
