// Package ioptest provides a conformance test suite for validating
// mapio.Provider implementations against the provider contract.
//
// Provider packages import the suite and execute it against a fresh,
// writable provider per test:
//
//	func TestProvider(t *testing.T) {
//	    ioptest.TestProvider(t, func() mapio.Provider {
//	        return myprovider.New()
//	    })
//	}
//
// The suite validates the interface contract, not backend-specific
// behavior: round-trips, stream end-of-stream semantics, enumeration
// shapes, and size-cap handling.
package ioptest

import (
	"bytes"
	"testing"

	"github.com/Cleptomanis/warzone2100/mapio"
)

// TestProvider runs all conformance tests. The newProvider function must
// return a fresh, empty, writable provider for each invocation.
func TestProvider(t *testing.T, newProvider func() mapio.Provider) {
	t.Run("WriteReadRoundTrip", func(t *testing.T) {
		testWriteReadRoundTrip(t, newProvider())
	})
	t.Run("LoadAppendNull", func(t *testing.T) {
		testLoadAppendNull(t, newProvider())
	})
	t.Run("LoadMissing", func(t *testing.T) {
		testLoadMissing(t, newProvider())
	})
	t.Run("LoadExceedsCap", func(t *testing.T) {
		testLoadExceedsCap(t, newProvider())
	})
	t.Run("FileExists", func(t *testing.T) {
		testFileExists(t, newProvider())
	})
	t.Run("StreamEndOfStream", func(t *testing.T) {
		testStreamEndOfStream(t, newProvider())
	})
	t.Run("StreamEmptyFile", func(t *testing.T) {
		testStreamEmptyFile(t, newProvider())
	})
	t.Run("StreamCloseIdempotent", func(t *testing.T) {
		testStreamCloseIdempotent(t, newProvider())
	})
	t.Run("OverwriteLastWins", func(t *testing.T) {
		testOverwriteLastWins(t, newProvider())
	})
	t.Run("Enumeration", func(t *testing.T) {
		testEnumeration(t, newProvider())
	})
	t.Run("MakeDirectory", func(t *testing.T) {
		testMakeDirectory(t, newProvider())
	})
}

func testWriteReadRoundTrip(t *testing.T, p mapio.Provider) {
	content := []byte("map content round trip")
	if !p.WriteFullFile("maps/alpha.json", content) {
		t.Fatalf("WriteFullFile(maps/alpha.json) failed")
	}
	data, result := p.LoadFullFile("maps/alpha.json", 0, false)
	if result != mapio.LoadSuccess {
		t.Fatalf("LoadFullFile result = %v, want success", result)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("LoadFullFile content = %q, want %q", data, content)
	}
}

func testLoadAppendNull(t *testing.T, p mapio.Provider) {
	content := []byte("terminated")
	if !p.WriteFullFile("notes.txt", content) {
		t.Fatalf("WriteFullFile(notes.txt) failed")
	}
	data, result := p.LoadFullFile("notes.txt", 0, true)
	if result != mapio.LoadSuccess {
		t.Fatalf("LoadFullFile result = %v, want success", result)
	}
	if len(data) != len(content)+1 {
		t.Fatalf("appendNull length = %d, want %d", len(data), len(content)+1)
	}
	if data[len(data)-1] != 0 {
		t.Errorf("appendNull last byte = %#x, want NUL", data[len(data)-1])
	}
	if !bytes.Equal(data[:len(content)], content) {
		t.Errorf("appendNull content = %q, want %q", data[:len(content)], content)
	}
}

func testLoadMissing(t *testing.T, p mapio.Provider) {
	data, result := p.LoadFullFile("does/not/exist.bin", 0, false)
	if result != mapio.LoadFailureOpen {
		t.Errorf("LoadFullFile(missing) result = %v, want open failure", result)
	}
	if data != nil {
		t.Errorf("LoadFullFile(missing) returned data %q, want none", data)
	}
}

func testLoadExceedsCap(t *testing.T, p mapio.Provider) {
	content := bytes.Repeat([]byte("x"), 100)
	if !p.WriteFullFile("big.bin", content) {
		t.Fatalf("WriteFullFile(big.bin) failed")
	}
	data, result := p.LoadFullFile("big.bin", 10, false)
	if result != mapio.LoadFailureExceedsMaxFileSize {
		t.Errorf("LoadFullFile over cap result = %v, want exceeds max file size", result)
	}
	if data != nil {
		t.Errorf("LoadFullFile over cap returned data, want none")
	}
	// A cap at the exact size must pass.
	if _, result := p.LoadFullFile("big.bin", 100, false); result != mapio.LoadSuccess {
		t.Errorf("LoadFullFile at exact cap result = %v, want success", result)
	}
}

func testFileExists(t *testing.T, p mapio.Provider) {
	if p.FileExists("ghost.txt") {
		t.Errorf("FileExists(ghost.txt) = true before write")
	}
	if !p.WriteFullFile("ghost.txt", []byte("boo")) {
		t.Fatalf("WriteFullFile(ghost.txt) failed")
	}
	if !p.FileExists("ghost.txt") {
		t.Errorf("FileExists(ghost.txt) = false after write")
	}
}

func testStreamEndOfStream(t *testing.T, p mapio.Provider) {
	if !p.WriteFullFile("stream.bin", []byte{1, 2, 3}) {
		t.Fatalf("WriteFullFile(stream.bin) failed")
	}
	s := p.OpenBinaryStream("stream.bin", mapio.ModeRead)
	if s == nil {
		t.Fatalf("OpenBinaryStream(stream.bin, read) = nil")
	}
	defer s.Close()

	if s.EndOfStream() {
		t.Fatalf("EndOfStream = true with 3 unread bytes")
	}
	// The probe byte must be yielded by the next read.
	buf := make([]byte, 2)
	n, err := s.ReadBytes(buf)
	if err != nil || n != 2 {
		t.Fatalf("ReadBytes = (%d, %v), want (2, nil)", n, err)
	}
	if buf[0] != 1 || buf[1] != 2 {
		t.Errorf("ReadBytes content = %v, want [1 2]", buf)
	}
	if s.EndOfStream() {
		t.Fatalf("EndOfStream = true with 1 unread byte")
	}
	n, err = s.ReadBytes(buf)
	if err != nil || n != 1 {
		t.Fatalf("ReadBytes at tail = (%d, %v), want (1, nil)", n, err)
	}
	if buf[0] != 3 {
		t.Errorf("final byte = %d, want 3", buf[0])
	}
	if !s.EndOfStream() {
		t.Errorf("EndOfStream = false after all bytes read")
	}
}

func testStreamEmptyFile(t *testing.T, p mapio.Provider) {
	w := p.OpenBinaryStream("empty.bin", mapio.ModeWrite)
	if w == nil {
		t.Fatalf("OpenBinaryStream(empty.bin, write) = nil")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("write stream Close: %v", err)
	}
	// A zero-byte stream reports end-of-stream immediately, when the
	// provider records empty files at all.
	if !p.FileExists("empty.bin") {
		t.Skip("provider does not record empty files")
	}
	s := p.OpenBinaryStream("empty.bin", mapio.ModeRead)
	if s == nil {
		t.Fatalf("OpenBinaryStream(empty.bin, read) = nil")
	}
	defer s.Close()
	if !s.EndOfStream() {
		t.Errorf("EndOfStream = false on empty file")
	}
}

func testStreamCloseIdempotent(t *testing.T, p mapio.Provider) {
	w := p.OpenBinaryStream("idem.bin", mapio.ModeWrite)
	if w == nil {
		t.Fatalf("OpenBinaryStream(idem.bin, write) = nil")
	}
	if _, err := w.WriteBytes([]byte("once")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v, want nil", err)
	}
	data, result := p.LoadFullFile("idem.bin", 0, false)
	if result != mapio.LoadSuccess || !bytes.Equal(data, []byte("once")) {
		t.Errorf("after double close: (%q, %v), want (\"once\", success)", data, result)
	}
}

func testOverwriteLastWins(t *testing.T, p mapio.Provider) {
	first := p.OpenBinaryStream("dup.txt", mapio.ModeWrite)
	second := p.OpenBinaryStream("dup.txt", mapio.ModeWrite)
	if first == nil || second == nil {
		t.Fatalf("OpenBinaryStream(dup.txt, write) = nil")
	}
	if _, err := first.WriteBytes([]byte("first")); err != nil {
		t.Fatalf("WriteBytes(first): %v", err)
	}
	if _, err := second.WriteBytes([]byte("second")); err != nil {
		t.Fatalf("WriteBytes(second): %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	data, result := p.LoadFullFile("dup.txt", 0, false)
	if result != mapio.LoadSuccess {
		t.Fatalf("LoadFullFile(dup.txt) result = %v, want success", result)
	}
	if !bytes.Equal(data, []byte("second")) {
		t.Errorf("last-write-wins content = %q, want %q", data, "second")
	}
}

func testEnumeration(t *testing.T, p mapio.Provider) {
	for name, content := range map[string][]byte{
		"a/b/c.txt": []byte("c"),
		"a/d.txt":   []byte("d"),
		"top.txt":   []byte("t"),
	} {
		if !p.WriteFullFile(name, content) {
			t.Fatalf("WriteFullFile(%s) failed", name)
		}
	}

	collect := func(enumerate func(string, mapio.EnumFunc) bool, base string) map[string]bool {
		names := make(map[string]bool)
		if !enumerate(base, func(name string) bool {
			names[name] = true
			return true
		}) {
			t.Fatalf("enumeration of %q reported failure", base)
		}
		return names
	}

	files := collect(p.EnumerateFiles, "a/")
	if len(files) != 1 || !files["d.txt"] {
		t.Errorf("EnumerateFiles(a/) = %v, want {d.txt}", files)
	}

	filesRec := collect(p.EnumerateFilesRecursive, "a/")
	if len(filesRec) != 2 || !filesRec["d.txt"] || !filesRec["b/c.txt"] {
		t.Errorf("EnumerateFilesRecursive(a/) = %v, want {d.txt, b/c.txt}", filesRec)
	}

	folders := collect(p.EnumerateFolders, "a/")
	if len(folders) != 1 || !folders["b/"] {
		t.Errorf("EnumerateFolders(a/) = %v, want {b/}", folders)
	}

	foldersRoot := collect(p.EnumerateFolders, "")
	if len(foldersRoot) != 1 || !foldersRoot["a/"] {
		t.Errorf("EnumerateFolders(\"\") = %v, want {a/}", foldersRoot)
	}

	foldersRec := collect(p.EnumerateFoldersRecursive, "")
	if len(foldersRec) != 2 || !foldersRec["a/"] || !foldersRec["a/b/"] {
		t.Errorf("EnumerateFoldersRecursive(\"\") = %v, want {a/, a/b/}", foldersRec)
	}

	// Early termination: the callback returning false stops enumeration.
	count := 0
	p.EnumerateFilesRecursive("", func(string) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("enumeration visited %d names after stop, want 1", count)
	}
}

func testMakeDirectory(t *testing.T, p mapio.Provider) {
	if !p.MakeDirectory("made/up/dir") {
		t.Errorf("MakeDirectory(made/up/dir) = false")
	}
	if p.PathSeparator() != "/" {
		t.Errorf("PathSeparator() = %q, want /", p.PathSeparator())
	}
}
