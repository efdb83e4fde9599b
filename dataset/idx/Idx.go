// Package idx reads datasets stored in the IDX format used by the
// MNIST database. Files may be gzip compressed.
package idx

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/dataset"
)

// IDX data type for unsigned bytes, the only type MNIST files use
const typeUint8 byte = 0x08

// Read parses the IDX file at filename, returning the raw unsigned
// byte data together with the dimensions recorded in the header. Files
// with a .gz suffix are decompressed while reading.
func Read(filename string) ([]byte, []int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("read: could not open file: %v", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(filename, ".gz") {
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, nil, fmt.Errorf("read: could not decompress "+
				"file: %v", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	// The magic number is 4 bytes: two zero bytes, the data type, and
	// the number of dimensions
	var magic [4]byte
	if _, err := io.ReadFull(reader, magic[:]); err != nil {
		return nil, nil, fmt.Errorf("read: could not read magic number: %v",
			err)
	}
	if magic[0] != 0 || magic[1] != 0 {
		return nil, nil, fmt.Errorf("read: invalid magic number % x", magic)
	}
	if magic[2] != typeUint8 {
		return nil, nil, fmt.Errorf("read: unsupported data type 0x%02x",
			magic[2])
	}

	numDims := int(magic[3])
	if numDims < 1 {
		return nil, nil, fmt.Errorf("read: invalid number of dimensions %v",
			numDims)
	}

	dims := make([]int, numDims)
	size := 1
	for i := range dims {
		var dim uint32
		if err := binary.Read(reader, binary.BigEndian, &dim); err != nil {
			return nil, nil, fmt.Errorf("read: could not read dimension "+
				"%v: %v", i, err)
		}
		dims[i] = int(dim)
		size *= int(dim)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, nil, fmt.Errorf("read: could not read data: %v", err)
	}

	return data, dims, nil
}

// LoadImages reads an IDX image file, returning a matrix with one
// flattened image per row. Pixel intensities are scaled to [0, 1].
func LoadImages(filename string) (*mat.Dense, error) {
	data, dims, err := Read(filename)
	if err != nil {
		return nil, err
	}
	if len(dims) != 3 {
		return nil, fmt.Errorf("loadimages: expected 3-dimensional image "+
			"data, got %v dimensions", len(dims))
	}

	images, pixels := dims[0], dims[1]*dims[2]
	scaled := make([]float64, len(data))
	for i, pixel := range data {
		scaled[i] = float64(pixel) / 255.0
	}

	return mat.NewDense(images, pixels, scaled), nil
}

// LoadLabels reads an IDX label file
func LoadLabels(filename string) ([]float64, error) {
	data, dims, err := Read(filename)
	if err != nil {
		return nil, err
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("loadlabels: expected 1-dimensional label "+
			"data, got %v dimensions", len(dims))
	}

	labels := make([]float64, len(data))
	for i, label := range data {
		labels[i] = float64(label)
	}
	return labels, nil
}

// LoadBinary reads IDX image and label files and keeps only the
// examples labelled positive or negative. Labels are remapped to +1
// for positive examples and -1 for negative ones, as used by maximum
// margin classifiers.
func LoadBinary(imageFile, labelFile string, positive,
	negative int) (*dataset.Dataset, error) {
	images, err := LoadImages(imageFile)
	if err != nil {
		return nil, err
	}
	labels, err := LoadLabels(labelFile)
	if err != nil {
		return nil, err
	}

	rows, cols := images.Dims()
	if rows != len(labels) {
		return nil, fmt.Errorf("loadbinary: %v images but %v labels", rows,
			len(labels))
	}

	var kept []float64
	var keptLabels []float64
	for i := 0; i < rows; i++ {
		switch int(labels[i]) {
		case positive:
			kept = append(kept, images.RawRowView(i)...)
			keptLabels = append(keptLabels, 1.0)
		case negative:
			kept = append(kept, images.RawRowView(i)...)
			keptLabels = append(keptLabels, -1.0)
		}
	}
	if len(keptLabels) == 0 {
		return nil, fmt.Errorf("loadbinary: no examples labelled %v or %v",
			positive, negative)
	}

	return dataset.New(mat.NewDense(len(keptLabels), cols, kept), keptLabels)
}
