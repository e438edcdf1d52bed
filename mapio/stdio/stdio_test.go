package stdio_test

import (
	"bytes"
	"testing"

	"github.com/Cleptomanis/warzone2100/mapio"
	"github.com/Cleptomanis/warzone2100/mapio/ioptest"
	"github.com/Cleptomanis/warzone2100/mapio/stdio"
)

func TestProviderConformanceMemory(t *testing.T) {
	ioptest.TestProvider(t, func() mapio.Provider {
		return stdio.NewMemory()
	})
}

func TestProviderConformanceLocal(t *testing.T) {
	ioptest.TestProvider(t, func() mapio.Provider {
		return stdio.NewLocal(t.TempDir())
	})
}

func TestLocalRoundTrip(t *testing.T) {
	p := stdio.NewLocal(t.TempDir())
	content := []byte("persisted on the real filesystem")
	if !p.WriteFullFile("deep/nested/file.bin", content) {
		t.Fatalf("WriteFullFile failed")
	}
	data, result := p.LoadFullFile("deep/nested/file.bin", 0, false)
	if result != mapio.LoadSuccess {
		t.Fatalf("LoadFullFile result = %v, want success", result)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("content = %q, want %q", data, content)
	}
}

func TestLoadFullFileZeroCapIsUncapped(t *testing.T) {
	p := stdio.NewMemory()
	content := bytes.Repeat([]byte("y"), 4096)
	if !p.WriteFullFile("large.bin", content) {
		t.Fatalf("WriteFullFile failed")
	}
	// Only an explicit maxFileSize caps the read; zero means no limit.
	if _, result := p.LoadFullFile("large.bin", 0, false); result != mapio.LoadSuccess {
		t.Errorf("LoadFullFile with zero cap = %v, want success", result)
	}
	if _, result := p.LoadFullFile("large.bin", 100, false); result != mapio.LoadFailureExceedsMaxFileSize {
		t.Errorf("LoadFullFile with explicit cap = %v, want exceeds max file size", result)
	}
}

func TestLeadingSlashNormalized(t *testing.T) {
	p := stdio.NewMemory()
	if !p.WriteFullFile("/rooted.txt", []byte("x")) {
		t.Fatalf("WriteFullFile(/rooted.txt) failed")
	}
	if !p.FileExists("rooted.txt") {
		t.Errorf("leading-slash write not visible under relative name")
	}
}

func TestMakeDirectoryVisibleInEnumeration(t *testing.T) {
	p := stdio.NewMemory()
	if !p.MakeDirectory("made/deep") {
		t.Fatalf("MakeDirectory failed")
	}
	found := false
	p.EnumerateFoldersRecursive("", func(name string) bool {
		if name == "made/deep/" {
			found = true
		}
		return true
	})
	if !found {
		t.Errorf("created directory missing from enumeration")
	}
}

func TestOpenBinaryStreamMissing(t *testing.T) {
	p := stdio.NewMemory()
	if s := p.OpenBinaryStream("absent.bin", mapio.ModeRead); s != nil {
		s.Close()
		t.Errorf("OpenBinaryStream(absent, read) = non-nil")
	}
}
