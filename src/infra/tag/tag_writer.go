package tag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/tubequeue/src/music"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
)

// ErrUnsupported is returned for containers that cannot carry tags we write.
var ErrUnsupported = errors.New("unsupported format for tagging")

// TagWriter writes song metadata into downloaded MP3 and FLAC files.
type TagWriter struct{}

// NewTagWriter creates a new TagWriter.
func NewTagWriter() *TagWriter {
	return &TagWriter{}
}

// WriteFileTags writes title, uploader, source url and the optional JPEG cover into the file.
func (t *TagWriter) WriteFileTags(ctx context.Context, filePath string, song music.Song, cover []byte) error {
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".mp3":
		return t.tagMP3(filePath, song, cover)
	case ".flac":
		return t.tagFLAC(filePath, song, cover)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// tagMP3 handles MP3 tagging using id3v2.
func (t *TagWriter) tagMP3(filePath string, song music.Song, cover []byte) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: false})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(song.Title)
	if song.Uploader != "" {
		tag.SetArtist(song.Uploader)
	}
	if song.Duration > 0 {
		tag.AddTextFrame(tag.CommonID("Length"), id3v2.EncodingUTF8, strconv.Itoa(song.Duration*1000))
	}
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: "YOUTUBE_ID",
		Value:       song.ID,
	})
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: "SOURCE_URL",
		Value:       song.WatchURL(),
	})

	if len(cover) > 0 {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Thumbnail",
			Picture:     cover,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	slog.Debug("Tagged MP3 file", "filePath", filePath, "title", song.Title, "cover", len(cover) > 0)
	return nil
}

// tagFLAC handles FLAC tagging using Vorbis comments.
func (t *TagWriter) tagFLAC(filePath string, song music.Song, cover []byte) error {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	// Drop existing comments and pictures so repeated tagging does not pile up blocks.
	kept := f.Meta[:0]
	for _, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment || meta.Type == goflac.Picture {
			continue
		}
		kept = append(kept, meta)
	}
	f.Meta = kept

	comment := flacvorbis.New()
	comment.Add(flacvorbis.FIELD_TITLE, song.Title)
	if song.Uploader != "" {
		comment.Add(flacvorbis.FIELD_ARTIST, song.Uploader)
	}
	comment.Add("YOUTUBE_ID", song.ID)
	comment.Add("SOURCE_URL", song.WatchURL())
	commentMeta := comment.Marshal()
	f.Meta = append(f.Meta, &commentMeta)

	if len(cover) > 0 {
		pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover, "Thumbnail", cover, "image/jpeg")
		if err != nil {
			slog.Warn("Failed to build FLAC picture block", "filePath", filePath, "error", err)
		} else {
			picMeta := pic.Marshal()
			f.Meta = append(f.Meta, &picMeta)
		}
	}

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	slog.Debug("Tagged FLAC file", "filePath", filePath, "title", song.Title, "cover", len(cover) > 0)
	return nil
}
