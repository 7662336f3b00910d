package pagetex

import (
	"errors"
	"fmt"

	"github.com/gogpu/pagetex/archive"
	"github.com/gogpu/pagetex/render"
)

var (
	// ErrInvalidJob is returned by Submit when a job fails static
	// validation. Nothing is dispatched.
	ErrInvalidJob = errors.New("pagetex: invalid job")

	// ErrServerClosed is returned by Submit after Close.
	ErrServerClosed = errors.New("pagetex: server closed")
)

// Stage names the pipeline step a job failed in.
type Stage int

const (
	// StageLoad reads the source bytes.
	StageLoad Stage = iota

	// StageResolve turns the bytes into a bundle.
	StageResolve

	// StageWorld builds the document world.
	StageWorld

	// StageCompile compiles the document and selects the page.
	StageCompile

	// StageRasterize draws the page.
	StageRasterize

	// StageApply writes the pixels into the result slot.
	StageApply
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageResolve:
		return "resolve"
	case StageWorld:
		return "world"
	case StageCompile:
		return "compile"
	case StageRasterize:
		return "rasterize"
	case StageApply:
		return "apply"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Kind classifies a job failure.
type Kind int

const (
	KindSource Kind = iota
	KindCorrupt
	KindUnsupported
	KindPathTraversal
	KindMissingMainDocument
	KindMalformedManifest
	KindCompile
	KindPageOutOfRange
	KindRasterize
	KindInternal
)

var kindNames = [...]string{
	KindSource:              "source",
	KindCorrupt:             "corrupt",
	KindUnsupported:         "unsupported",
	KindPathTraversal:       "path-traversal",
	KindMissingMainDocument: "missing-main-document",
	KindMalformedManifest:   "malformed-manifest",
	KindCompile:             "compile",
	KindPageOutOfRange:      "page-out-of-range",
	KindRasterize:           "rasterize",
	KindInternal:            "internal",
}

// String returns the kind name.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// JobError describes a failed job. Err is the underlying cause and keeps
// the package sentinels reachable with errors.Is.
type JobError struct {
	ID    JobID
	Stage Stage
	Kind  Kind
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("pagetex: job %d failed at %s (%s): %v", e.ID, e.Stage, e.Kind, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// kindOf classifies err by the sentinel it wraps.
func kindOf(err error) Kind {
	switch {
	case errors.Is(err, archive.ErrCorrupt):
		return KindCorrupt
	case errors.Is(err, archive.ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, archive.ErrPathTraversal):
		return KindPathTraversal
	case errors.Is(err, archive.ErrMissingMainDocument):
		return KindMissingMainDocument
	case errors.Is(err, archive.ErrMalformedManifest):
		return KindMalformedManifest
	case errors.Is(err, render.ErrPageOutOfRange):
		return KindPageOutOfRange
	case errors.Is(err, render.ErrCompile):
		return KindCompile
	case errors.Is(err, render.ErrRasterize):
		return KindRasterize
	default:
		return KindInternal
	}
}

// sourceError classifies a failure of source.Open. Archive failures belong
// to the resolve stage; anything else happened while loading.
func sourceError(id JobID, err error) *JobError {
	k := kindOf(err)
	if k == KindInternal {
		return &JobError{ID: id, Stage: StageLoad, Kind: KindSource, Err: err}
	}
	return &JobError{ID: id, Stage: StageResolve, Kind: k, Err: err}
}

// renderError classifies a failure of the render adapter. Everything the
// adapter reports happens during or after compilation except drawing.
func renderError(id JobID, err error) *JobError {
	k := kindOf(err)
	st := StageCompile
	if k == KindRasterize {
		st = StageRasterize
	}
	return &JobError{ID: id, Stage: st, Kind: k, Err: err}
}
