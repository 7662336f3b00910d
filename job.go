package pagetex

import (
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/pagetex/source"
	"github.com/gogpu/pagetex/texture"
	"github.com/gogpu/pagetex/world"
)

// JobID identifies a submitted job. IDs increase monotonically per server
// and are never reused.
type JobID uint64

// JobOptions describe the texture a job produces.
type JobOptions struct {
	// Width and Height are the texture size in pixels. Both must be
	// positive.
	Width, Height int

	// Page is the zero-based page to render.
	Page int

	// Format is the slot pixel format. Undefined means
	// texture.DefaultFormat.
	Format gputypes.TextureFormat

	// Alpha selects premultiplied (default) or straight alpha.
	Alpha texture.AlphaMode

	// Input is a key-value input; Data is any JSON-serializable value
	// converted to a map. Both are merged according to InputMode and
	// exposed to the document as .inputs.
	Input     map[string]any
	Data      any
	InputMode world.MergeMode

	// Fonts overrides the server's font options for this job.
	Fonts *world.FontOptions
}

// validate checks the static fields and returns the merged inputs.
func (o *JobOptions) validate(src source.Source) (map[string]any, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidJob, o.Width, o.Height)
	}
	if o.Page < 0 {
		return nil, fmt.Errorf("%w: page %d", ErrInvalidJob, o.Page)
	}
	if o.Format == gputypes.TextureFormatUndefined {
		o.Format = texture.DefaultFormat
	}
	if !texture.Supported(o.Format) {
		return nil, fmt.Errorf("%w: %w: %v", ErrInvalidJob, texture.ErrUnsupportedFormat, o.Format)
	}
	if o.Alpha != texture.Premultiplied && o.Alpha != texture.Straight {
		return nil, fmt.Errorf("%w: alpha mode %v", ErrInvalidJob, o.Alpha)
	}
	inputs, err := world.MergeInputs(o.Input, o.Data, world.MergeOptions{Mode: o.InputMode})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}
	if o.Fonts != nil {
		f := *o.Fonts
		f.Dirs = slices.Clone(f.Dirs)
		o.Fonts = &f
	}
	return inputs, nil
}

// Outcome reports a job delivered by PollAndApply.
type Outcome struct {
	ID   JobID
	Slot texture.Handle
	Page int

	// Digest fingerprints the source bytes. It is empty for pre-resolved
	// bundles and for jobs that failed before the source was read.
	Digest string

	// Err is nil when the slot now holds the rendered page. Otherwise it
	// is a *JobError and the slot was left untouched, except that a
	// failed host upload leaves the new pixels in the slot.
	Err error

	// Elapsed is the time from submission to application.
	Elapsed time.Duration
}

// OK reports whether the job succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// job is a table entry. Only the control goroutine touches it.
type job struct {
	id        JobID
	source    source.Source
	options   JobOptions
	inputs    map[string]any
	slot      texture.Handle
	submitted time.Time
}

// task is the copy of a job a worker receives.
type task struct {
	id     JobID
	source source.Source
	inputs map[string]any
	fonts  *world.FontOptions
	page   int
	width  int
	height int
}

func (j *job) task() task {
	return task{
		id:     j.id,
		source: j.source,
		inputs: j.inputs,
		fonts:  j.options.Fonts,
		page:   j.options.Page,
		width:  j.options.Width,
		height: j.options.Height,
	}
}

// result travels from a worker to the applier. It is never modified after
// the worker pushes it.
type result struct {
	id     JobID
	pixels []byte
	width  int
	height int
	page   int
	digest string
	err    *JobError
}
