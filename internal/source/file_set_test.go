package source

import (
	"testing"
	"os"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	// add the file for the first time
	id1 := fs.Add("test.sg", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}

	// check that GetLatest returns the right ID
	latestID, exists := fs.GetLatest("test.sg")
	if !exists {
		t.Error("Expected file to exist after Add")
	}
	if latestID != id1 {
		t.Errorf("Expected latest ID to be %d, got %d", id1, latestID)
	}

	// add the same path again with new content
	id2 := fs.Add("test.sg", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	// check that GetLatest now returns the new ID
	latestID, exists = fs.GetLatest("test.sg")
	if !exists {
		t.Error("Expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	// check that the old file is still reachable
	file1 := fs.Get(id1)
	if string(file1.Content) != "hello world" {
		t.Errorf("Expected first file content to be 'hello world', got '%s'", string(file1.Content))
	}

	// check that the new file has the right content
	file2 := fs.Get(id2)
	if string(file2.Content) != "hello universe" {
		t.Errorf("Expected second file content to be 'hello universe', got '%s'", string(file2.Content))
	}

	// check that both files share the same path
	if file1.Path != "test.sg" || file2.Path != "test.sg" {
		t.Error("Expected both files to have the same path")
	}
}

// TestAddVirtualLineIdx checks that LineIdx is built correctly for AddVirtual.
func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	// add file "a\nb\n" - LineIdx should be [1,3]
	id := fs.AddVirtual("a.sg", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3} // byte offsets of the \n characters
	if len(file.LineIdx) != len(expected) {
		t.Errorf("Expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}

	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, file.LineIdx[i])
		}
	}

	// check the FileVirtual flag
	if file.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag to be set")
	}
}

// TestCRLFNormalization checks CRLF normalization.
func TestCRLFNormalization(t *testing.T) {
	fs := NewFileSet()

	// test "a\r\nb\r\n" → "a\nb\n"
	original := []byte("a\r\nb\r\n")
	normalized, changed := normalizeCRLF(original)

	if !changed {
		t.Error("Expected CRLF normalization to be detected")
	}

	expected := []byte("a\nb\n")
	if string(normalized) != string(expected) {
		t.Errorf("Expected normalized content %q, got %q", string(expected), string(normalized))
	}

	// check that the length shrank by the number of replacements
	originalLen := len(original)
	normalizedLen := len(normalized)
	expectedLen := originalLen - 2 // two \r\n pairs replaced with \n
	if normalizedLen != expectedLen {
		t.Errorf("Expected length %d, got %d", expectedLen, normalizedLen)
	}

	// test through Load with the FileNormalizedCRLF flag
	id := fs.Add("test.sg", normalized, FileNormalizedCRLF)
	file := fs.Get(id)

	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("Expected FileNormalizedCRLF flag to be set")
	}
}

// TestBOMRemoval checks BOM removal.
func TestBOMRemoval(t *testing.T) {
	fs := NewFileSet()

	// test BOM + "x\n"
	bomContent := []byte{0xEF, 0xBB, 0xBF, 'x', '\n'}
	withoutBOM, hadBOM := removeBOM(bomContent)

	if !hadBOM {
		t.Error("Expected BOM to be detected")
	}

	expected := []byte{'x', '\n'}
	if string(withoutBOM) != string(expected) {
		t.Errorf("Expected content without BOM %q, got %q", string(expected), string(withoutBOM))
	}

	// check through Add with the FileHadBOM flag
	id := fs.Add("test.sg", withoutBOM, FileHadBOM)
	file := fs.Get(id)

	if file.Flags&FileHadBOM == 0 {
		t.Error("Expected FileHadBOM flag to be set")
	}
}

// TestResolveUTF8 checks position resolution in UTF-8 text.
func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()

	// add a file with a UTF-8 character "α\n" (α takes 2 bytes)
	content := []byte("α\n") // α = 2 bytes, \n = 1 byte
	id := fs.AddVirtual("test.sg", content)

	// Resolve(Span{Start:0, End:1}) in "α\n"
	// Start=0 → the start of α (line 1, column 1)
	// End=1 → position after the first byte of α (line 1, column 2)
	span := Span{File: id, Start: 0, End: 1}
	start, end := fs.Resolve(span)

	expectedStart := LineCol{Line: 1, Col: 1}
	expectedEnd := LineCol{Line: 1, Col: 2}

	if start != expectedStart {
		t.Errorf("Expected start %+v, got %+v", expectedStart, start)
	}

	if end != expectedEnd {
		t.Errorf("Expected end %+v, got %+v", expectedEnd, end)
	}
}

// TestFileVersioning checks file versioning.
func TestFileVersioning(t *testing.T) {
	fs := NewFileSet()

	// first call to Add
	content1 := []byte("version 1")
	id1 := fs.Add("test.sg", content1, 0)

	// check that index[path] points at the first file
	latestID, exists := fs.GetLatest("test.sg")
	if !exists {
		t.Error("Expected file to exist")
	}
	if latestID != id1 {
		t.Errorf("Expected latest ID to be %d, got %d", id1, latestID)
	}

	// second call to Add with the same path but different content
	content2 := []byte("version 2")
	id2 := fs.Add("test.sg", content2, 0)

	// check that we got a new FileID
	if id2 == id1 {
		t.Error("Expected different FileID for second Add")
	}

	// check that index[path] now points at the second file
	latestID, exists = fs.GetLatest("test.sg")
	if !exists {
		t.Error("Expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latestID)
	}

	// check that both files are reachable with correct content
	file1 := fs.Get(id1)
	file2 := fs.Get(id2)

	if string(file1.Content) != "version 1" {
		t.Errorf("Expected first file content 'version 1', got %q", string(file1.Content))
	}

	if string(file2.Content) != "version 2" {
		t.Errorf("Expected second file content 'version 2', got %q", string(file2.Content))
	}

	// check that both files share the same path
	if file1.Path != file2.Path {
		t.Error("Expected both files to have the same path")
	}
}

// TestEdgeCases checks boundary cases.
func TestEdgeCases(t *testing.T) {
	fs := NewFileSet()

	// empty file
	id1 := fs.AddVirtual("empty.sg", []byte{})
	file1 := fs.Get(id1)
	if len(file1.LineIdx) != 0 {
		t.Errorf("Expected empty LineIdx for empty file, got length %d", len(file1.LineIdx))
	}

	// file with no newlines
	id2 := fs.AddVirtual("no_newlines.sg", []byte("hello"))
	file2 := fs.Get(id2)
	if len(file2.LineIdx) != 0 {
		t.Errorf("Expected empty LineIdx for file without newlines, got length %d", len(file2.LineIdx))
	}

	// file containing only a newline
	id3 := fs.AddVirtual("only_newline.sg", []byte("\n"))
	file3 := fs.Get(id3)
	expected := []uint32{0}
	if len(file3.LineIdx) != 1 || file3.LineIdx[0] != expected[0] {
		t.Errorf("Expected LineIdx [0] for file with only newline, got %v", file3.LineIdx)
	}
}

func TestLoad(t *testing.T) {
	fs := NewFileSet()
	// create a temp file
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	// write "a\nb\n" into it
	_, err = tempFile.WriteString("a\nb\n")
	if err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	err = tempFile.Close()
	if err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	fs.Load(tempFile.Name())
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected file content 'a\nb\n', got %q", string(file.Content))
	}
	if file.LineIdx[0] != 1 {
		t.Errorf("Expected LineIdx[0] to be 1, got %d", file.LineIdx[0])
	}
	if file.LineIdx[1] != 3 {
		t.Errorf("Expected LineIdx[1] to be 3, got %d", file.LineIdx[1])
	}
}

func TestLoadBOM(t *testing.T) {
	fs := NewFileSet()
	// create a temp file
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())
	// write BOM + "a\nb\n" into it
	_, err = tempFile.WriteString("\xEF\xBB\xBFa\nb\n")
	if err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	err = tempFile.Close()
	if err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	fs.Load(tempFile.Name())
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected file content 'a\nb\n', got %q", string(file.Content))
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("Expected FileHadBOM flag to be set")
	}
}

func TestLoadCRLF(t *testing.T) {
	fs := NewFileSet()
	// create a temp file
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	// write "a\r\nb\r\n" into it
	_, err = tempFile.WriteString("a\r\nb\r\n")
	if err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	err = tempFile.Close()
	if err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	fs.Load(tempFile.Name())
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("Expected file content 'a\nb\n', got %q", string(file.Content))
	}
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("Expected FileNormalizedCRLF flag to be set")
	}
}
