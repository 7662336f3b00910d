// Package pagetex turns document bundles into GPU-ready textures without
// blocking the caller.
//
// # Overview
//
// A job names a source (a zip bundle or a single YAML document, read from
// disk, object storage or memory), the page to render and the texture
// size. Submit returns a result slot immediately and runs the job on a
// worker goroutine: the bundle is resolved, a closed document world is
// built from its files, fonts and inputs, and the page is compiled and
// rasterized with gogpu/gg. The control goroutine calls PollAndApply once
// per tick to copy finished pixels into their slots.
//
// # Quick Start
//
//	store := texture.NewStore()
//	srv := pagetex.NewServer(store,
//	    pagetex.WithLoader(source.NewDirLoader("assets")),
//	    pagetex.WithFonts(world.FontOptions{Embedded: true}),
//	)
//	defer srv.Close(context.Background())
//
//	slot, _, err := srv.Submit(source.Path("card.zip"), pagetex.JobOptions{
//	    Width:  512,
//	    Height: 512,
//	    Input:  map[string]any{"title": "Hello"},
//	})
//
//	// Every frame:
//	for _, out := range srv.PollAndApply() {
//	    if !out.OK() {
//	        log.Print(out.Err)
//	    }
//	}
//	s, _ := store.Get(slot) // stable; contents change in place
//
// # Ordering
//
// Jobs complete in any order and are applied in completion order. Two jobs
// writing the same slot race; the one applied last wins.
//
// # Architecture
//
// The module is organized into:
//   - archive: zip bundles, path normalization, package.toml manifests
//   - world: closed file set, fonts, and inputs for one compilation
//   - document: the built-in YAML document compiler
//   - render: compile and rasterize one page to an exact pixel size
//   - texture: result slots, pixel formats, host GPU texture binding
//   - source: loaders for local directories and object storage
//   - metrics: Prometheus collectors
//
// # Coordinate System
//
// Document lengths are in points. A page of W x H points rendered to a
// texture of w x h pixels is scaled uniformly by min(w/W, h/H) with the
// page anchored at the top-left corner; texture pixels outside the page
// stay transparent.
package pagetex

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
