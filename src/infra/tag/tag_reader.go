package tag

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dhowden/tag"
)

// ebmlMagic starts every Matroska/WebM file, which the tag library does not recognise.
var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// Metadata is what TagReader reports about an audio file.
type Metadata struct {
	FileType string
	Title    string
	Artist   string
}

// TagReader inspects downloaded files using the dhowden/tag library.
type TagReader struct{}

// NewTagReader creates a new TagReader
func NewTagReader() *TagReader {
	return &TagReader{}
}

// Identify returns the container type of an audio file, or an error when the file
// is empty or not a recognised audio format.
func (r *TagReader) Identify(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	head := make([]byte, len(ebmlMagic))
	if _, err := io.ReadFull(file, head); err != nil {
		return "", fmt.Errorf("file too small to be audio: %w", err)
	}
	switch {
	case bytes.Equal(head, ebmlMagic):
		return "WEBM", nil
	case head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// Bare MPEG frame without an ID3 header.
		return string(tag.MP3), nil
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	_, fileType, err := tag.Identify(file)
	if err != nil {
		return "", fmt.Errorf("failed to identify file: %w", err)
	}
	if fileType == tag.UnknownFileType {
		return "", fmt.Errorf("unrecognised audio file %s", filePath)
	}
	return string(fileType), nil
}

// ReadFileTags reads the title and artist stored in a file.
func (r *TagReader) ReadFileTags(filePath string) (*Metadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return &Metadata{
		FileType: string(tags.FileType()),
		Title:    tags.Title(),
		Artist:   tags.Artist(),
	}, nil
}
