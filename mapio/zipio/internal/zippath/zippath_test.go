package zippath

import (
	"reflect"
	"testing"
)

func TestIsUnsafe(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"", true},
		{"../escape.txt", true},
		{"dir/../escape.txt", true},
		{"trailing/..", true},
		{"we..ird.txt", true},
		{"/rooted.txt", true},
		{`\rooted.txt`, true},
		{`C:\drive.txt`, true},
		{"c:/drive.txt", true},
		{"Z:", true},
		{"plain.txt", false},
		{"dir/file.txt", false},
		{"dir/", false},
		{"dots.in.name.txt", false},
		{"1:not-a-drive", false},
	}
	for _, tt := range tests {
		if got := IsUnsafe(tt.name); got != tt.want {
			t.Errorf("IsUnsafe(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSeparatorConversion(t *testing.T) {
	if got := ToForwardSlashes(`a\b\c.txt`); got != "a/b/c.txt" {
		t.Errorf("ToForwardSlashes = %q", got)
	}
	if got := ToBackslashes("a/b/c.txt"); got != `a\b\c.txt` {
		t.Errorf("ToBackslashes = %q", got)
	}
	if got := ToForwardSlashes("unchanged.txt"); got != "unchanged.txt" {
		t.Errorf("ToForwardSlashes(no separators) = %q", got)
	}
}

func TestNormalizeBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"a", "a/"},
		{"a/", "a/"},
		{"a/b", "a/b/"},
	}
	for _, tt := range tests {
		if got := NormalizeBase(tt.in); got != tt.want {
			t.Errorf("NormalizeBase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAncestorDirs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"top.txt", nil},
		{"a/b.txt", []string{"a/"}},
		{"a/b/c.txt", []string{"a/b/", "a/"}},
		{"a/b/", []string{"a/b/", "a/"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := AncestorDirs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("AncestorDirs(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
