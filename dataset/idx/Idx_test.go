package idx

import (
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// writeIDX writes an IDX file with the given dimensions and data,
// optionally gzip compressed
func writeIDX(t *testing.T, filename string, dims []int, data []byte,
	compress bool) {
	t.Helper()

	file, err := os.Create(filename)
	if err != nil {
		t.Fatalf("could not create test file: %v", err)
	}
	defer file.Close()

	var w io.Writer = file
	if compress {
		gz := gzip.NewWriter(file)
		defer gz.Close()
		w = gz
	}

	w.Write([]byte{0, 0, typeUint8, byte(len(dims))})
	for _, dim := range dims {
		binary.Write(w, binary.BigEndian, uint32(dim))
	}
	w.Write(data)
}

func TestReadParsesHeaderAndData(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "images.idx")
	pixels := []byte{
		0, 255, 128, 64,
		1, 2, 3, 4,
	}
	writeIDX(t, filename, []int{2, 2, 2}, pixels, false)

	data, dims, err := Read(filename)
	if err != nil {
		t.Fatalf("could not read file: %v", err)
	}
	if len(dims) != 3 || dims[0] != 2 || dims[1] != 2 || dims[2] != 2 {
		t.Errorf("expected dimensions [2 2 2], got %v", dims)
	}
	for i := range pixels {
		if data[i] != pixels[i] {
			t.Errorf("byte %v: expected %v, got %v", i, pixels[i], data[i])
		}
	}
}

func TestReadGzip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "labels.idx.gz")
	writeIDX(t, filename, []int{3}, []byte{7, 3, 7}, true)

	data, dims, err := Read(filename)
	if err != nil {
		t.Fatalf("could not read gzip file: %v", err)
	}
	if len(dims) != 1 || dims[0] != 3 {
		t.Errorf("expected dimensions [3], got %v", dims)
	}
	if data[0] != 7 || data[1] != 3 || data[2] != 7 {
		t.Errorf("unexpected data %v", data)
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "bad.idx")
	os.WriteFile(filename, []byte{1, 2, 3, 4, 5}, 0o644)

	if _, _, err := Read(filename); err == nil {
		t.Error("expected error for invalid magic number")
	}
}

func TestLoadImagesScalesPixels(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "images.idx")
	writeIDX(t, filename, []int{1, 2, 2}, []byte{0, 255, 51, 102}, false)

	images, err := LoadImages(filename)
	if err != nil {
		t.Fatalf("could not load images: %v", err)
	}
	rows, cols := images.Dims()
	if rows != 1 || cols != 4 {
		t.Fatalf("expected a 1x4 matrix, got %vx%v", rows, cols)
	}
	if images.At(0, 0) != 0 || images.At(0, 1) != 1 {
		t.Errorf("pixels not scaled to [0, 1]: %v", images.RawRowView(0))
	}
}

func TestLoadBinaryRemapsLabels(t *testing.T) {
	dir := t.TempDir()
	imageFile := filepath.Join(dir, "images.idx")
	labelFile := filepath.Join(dir, "labels.idx")

	// Four 1-pixel images with digits 0, 1, 2, 1
	writeIDX(t, imageFile, []int{4, 1, 1}, []byte{10, 20, 30, 40}, false)
	writeIDX(t, labelFile, []int{4}, []byte{0, 1, 2, 1}, false)

	data, err := LoadBinary(imageFile, labelFile, 1, 0)
	if err != nil {
		t.Fatalf("could not load binary dataset: %v", err)
	}

	if data.Len() != 3 {
		t.Fatalf("expected 3 examples, got %v", data.Len())
	}
	want := []float64{-1, 1, 1}
	for i, label := range data.Labels() {
		if label != want[i] {
			t.Errorf("example %v: expected label %v, got %v", i, want[i],
				label)
		}
	}
}

func TestLoadBinaryNoMatches(t *testing.T) {
	dir := t.TempDir()
	imageFile := filepath.Join(dir, "images.idx")
	labelFile := filepath.Join(dir, "labels.idx")
	writeIDX(t, imageFile, []int{1, 1, 1}, []byte{10}, false)
	writeIDX(t, labelFile, []int{1}, []byte{5}, false)

	if _, err := LoadBinary(imageFile, labelFile, 1, 0); err == nil {
		t.Error("expected error when no examples match")
	}
}
