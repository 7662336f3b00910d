package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/pagetex/archive"
)

type openedSource struct {
	name   string
	digest string
	bundle *archive.Bundle
}

// bundleReport is the printable view of a resolved bundle.
type bundleReport struct {
	Source          string            `json:"source" yaml:"source"`
	Digest          string            `json:"digest" yaml:"digest"`
	Standalone      bool              `json:"standalone" yaml:"standalone"`
	Name            string            `json:"name,omitempty" yaml:"name,omitempty"`
	Authors         []string          `json:"authors,omitempty" yaml:"authors,omitempty"`
	AssetRequests   map[string]string `json:"asset_requests,omitempty" yaml:"asset_requests,omitempty"`
	PackageRequests []string          `json:"package_requests,omitempty" yaml:"package_requests,omitempty"`
	Files           []fileReport      `json:"files" yaml:"files"`
}

type fileReport struct {
	Path string `json:"path" yaml:"path"`
	Size int    `json:"size" yaml:"size"`
}

func newReport(o *openedSource) bundleReport {
	b := o.bundle
	r := bundleReport{
		Source:     o.name,
		Digest:     o.digest,
		Standalone: b.Standalone,
	}
	if m := b.Manifest; m != nil {
		r.Name = m.Name
		r.Authors = m.Authors
		r.PackageRequests = m.PackageRequests
		if len(m.AssetRequests) > 0 {
			r.AssetRequests = make(map[string]string, len(m.AssetRequests))
			for k, v := range m.AssetRequests {
				r.AssetRequests[k] = string(v)
			}
		}
	}
	for _, p := range b.Paths() {
		data, _ := b.ReadFile(p)
		r.Files = append(r.Files, fileReport{Path: p, Size: len(data)})
	}
	return r
}

func newInspectCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect SOURCE",
		Short: "Print the resolved files and manifest of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), newReport(o), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	return cmd
}

func printReport(w io.Writer, r bundleReport, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return printText(w, r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printText(w io.Writer, r bundleReport) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "source:\t%s\n", r.Source)
	fmt.Fprintf(tw, "digest:\t%s\n", r.Digest)
	fmt.Fprintf(tw, "standalone:\t%v\n", r.Standalone)
	if r.Name != "" {
		fmt.Fprintf(tw, "name:\t%s\n", r.Name)
	}
	for _, a := range r.Authors {
		fmt.Fprintf(tw, "author:\t%s\n", a)
	}
	for _, k := range slices.Sorted(maps.Keys(r.AssetRequests)) {
		if hint := r.AssetRequests[k]; hint != "" {
			fmt.Fprintf(tw, "asset request:\t%s (%s)\n", k, hint)
		} else {
			fmt.Fprintf(tw, "asset request:\t%s\n", k)
		}
	}
	for _, p := range r.PackageRequests {
		fmt.Fprintf(tw, "package request:\t%s\n", p)
	}
	fmt.Fprintln(tw)
	for _, f := range r.Files {
		fmt.Fprintf(tw, "%s\t%d\n", f.Path, f.Size)
	}
	return tw.Flush()
}
