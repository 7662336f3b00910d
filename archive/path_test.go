package archive

import (
	"errors"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "main.yaml", want: "main.yaml"},
		{in: "./fonts/Inter.otf", want: "fonts/Inter.otf"},
		{in: `images\logo.png`, want: "images/logo.png"},
		{in: "a//b/./c.txt", want: "a/b/c.txt"},
		{in: "dir/", want: "dir"},
		{in: "./", want: ""},
		// "e" + combining acute accent becomes precomposed U+00E9.
		{in: "caf\u0065\u0301.yaml", want: "caf\u00e9.yaml"},
		{in: "../x", wantErr: true},
		{in: "a/../../x", wantErr: true},
		{in: "..", wantErr: true},
		{in: "a/../b", want: "b"},
		{in: "fonts/../main.yaml", want: "main.yaml"},
		{in: "a/..", want: ""},
		{in: "/root", wantErr: true},
		{in: `\\server\share`, wantErr: true},
		{in: "c:/boot.ini", wantErr: true},
	}
	for _, tt := range tests {
		got, err := NormalizePath(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrPathTraversal) {
				t.Errorf("NormalizePath(%q) error = %v, want ErrPathTraversal", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizePath(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsMetadata(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"__MACOSX/main.yaml", true},
		{"project/__MACOSX/x", true},
		{".DS_Store", true},
		{"images/.DS_Store", true},
		{"images/._logo.png", true},
		{".Trashes/501/x", true},
		{"Thumbs.db", true},
		{"main.yaml", false},
		{"images/logo.png", false},
		{"fonts/_Inter.otf", false},
		{".config/settings.yaml", false},
	}
	for _, tt := range tests {
		if got := IsMetadata(tt.path); got != tt.want {
			t.Errorf("IsMetadata(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCommonRoot(t *testing.T) {
	tests := []struct {
		paths []string
		want  string
	}{
		{[]string{"p/main.yaml", "p/a/b"}, "p"},
		{[]string{"p/main.yaml", "q/x"}, ""},
		{[]string{"main.yaml"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := commonRoot(tt.paths); got != tt.want {
			t.Errorf("commonRoot(%v) = %q, want %q", tt.paths, got, tt.want)
		}
	}
}
