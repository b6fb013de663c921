package entity

import (
	"path/filepath"
	"strings"
)

// FileUpload is a proof file selected on the new bill form
type FileUpload struct {
	Name        string
	ContentType string
	Content     []byte
	Email       string
}

// Extension returns the lower-cased file extension without the dot
func (f *FileUpload) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
}

// Size returns the content length in bytes
func (f *FileUpload) Size() int64 {
	return int64(len(f.Content))
}

// UploadResult is returned by the store once a proof file is stored
type UploadResult struct {
	FileURL string `json:"fileUrl"`
	Key     string `json:"key"`
}

// PendingFile links a completed upload to the following submit
type PendingFile struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
	Key      string `json:"key"`
}

// FileInputState mirrors the file input of the new bill form
type FileInputState struct {
	Value   string `json:"value"`
	Message string `json:"message,omitempty"`
}
