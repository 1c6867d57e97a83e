package book

import "fmt"

// FileType identifies the format of a book's primary file.
//
// The set is closed: the reader UI only knows how to open these formats,
// so anything else is rejected before a download starts.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeEPUB FileType = "epub"
	FileTypeCBZ  FileType = "cbz"
	FileTypeTXT  FileType = "txt"
)

// fileTypeContentTypes maps each file type to the MIME type stored
// alongside the cached bytes and returned to the reader UI.
var fileTypeContentTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeEPUB: "application/epub+zip",
	FileTypeCBZ:  "application/vnd.comicbook+zip",
	FileTypeTXT:  "text/plain; charset=utf-8",
}

// ParseFileType converts a string into a FileType.
// Returns an error for formats the reader cannot open.
func ParseFileType(s string) (FileType, error) {
	ft := FileType(s)
	if !ft.Valid() {
		return "", fmt.Errorf("unsupported file type: %q", s)
	}
	return ft, nil
}

// Valid reports whether the file type is a member of the supported set.
func (ft FileType) Valid() bool {
	_, ok := fileTypeContentTypes[ft]
	return ok
}

// ContentType returns the MIME type for the file type.
// Unknown types fall back to application/octet-stream.
func (ft FileType) ContentType() string {
	if ct, ok := fileTypeContentTypes[ft]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Extension returns the file extension including the leading dot.
func (ft FileType) Extension() string {
	if ft.Valid() {
		return "." + string(ft)
	}
	return ""
}

func (ft FileType) String() string {
	return string(ft)
}
