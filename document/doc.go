// Package document compiles page documents into display lists.
//
// A document is a YAML file, by convention main.yaml at the root of a
// bundle. Before parsing it is expanded as a Go text/template with the
// sprig function set; the template data is
//
//	{"inputs": <job input map>}
//
// The parsed document describes one page size and a list of content
// elements:
//
//	page:
//	  width: 210mm
//	  height: 99mm
//	  fill: "#ffffff"
//	  margin: 8mm
//	content:
//	  - rect:   {x: 0, y: 0, width: 100%, height: 12mm, fill: "#1e3a8a"}
//	  - text:   {body: "Hello {{ .inputs.name }}", x: 10mm, y: 20mm, size: 18}
//	  - image:  {src: images/logo.png, x: 150mm, y: 20mm, width: 40mm}
//	  - include: parts/footer.yaml
//	  - pagebreak: true
//
// Lengths are points, or strings with a pt, px, mm, cm, in or % suffix.
// Positions are measured from the top-left corner of the content area, the
// page minus its margin. Percentages are relative to the content area's
// width for horizontal values and to its height for vertical ones. A
// pagebreak starts a new page with the same page settings.
//
// Compilation reads only from a world.World, so a document cannot reach
// files outside its own bundle.
package document
