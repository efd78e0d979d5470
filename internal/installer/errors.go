package installer

import (
	"errors"
	"fmt"

	"github.com/coosanta/meldmc-installer/internal/repo"
)

// Stage names a step of the install state machine.
type Stage string

const (
	StageValidate      Stage = "validate"
	StageCreateDir     Stage = "create-version-dir"
	StageFetchManifest Stage = "fetch-manifest"
	StageWriteManifest Stage = "write-manifest"
	StageMergeProfile  Stage = "merge-profile"
)

// Error kinds. Every *StepError matches exactly one via errors.Is.
var (
	ErrUserInput  = errors.New("invalid input")
	ErrNetwork    = repo.ErrNetwork
	ErrFilesystem = errors.New("filesystem error")
	ErrProfile    = errors.New("launcher profile error")
)

// StepError is the terminal failure of an install attempt.
type StepError struct {
	Stage Stage
	Kind  error  // one of the Err* kinds above
	Path  string // file or directory involved, if any
	Err   error
}

func (e *StepError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *StepError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Summary is a one-line description for dialogs and status lines.
func (e *StepError) Summary() string {
	switch e.Stage {
	case StageValidate:
		return "Invalid selection: " + e.Err.Error()
	case StageCreateDir:
		return "Failed to create version directory"
	case StageFetchManifest:
		return "Failed to download client configuration"
	case StageWriteManifest:
		return "Failed to save client configuration"
	case StageMergeProfile:
		return "Failed to create launcher profile"
	}
	return "Installation failed"
}

func userInput(format string, args ...any) *StepError {
	return &StepError{Stage: StageValidate, Kind: ErrUserInput, Err: fmt.Errorf(format, args...)}
}
