package handlers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// unsafeChars matches everything not allowed in a stored file name.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// secureFilename strips path components and unsafe characters from a
// client-supplied file name.
func secureFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	if name == "" || name == "." || name == ".." {
		name = "arquivo"
	}
	return name
}

// saveUpload writes src into dir under a timestamped unique name and
// returns the stored name, full path and byte count.
func saveUpload(dir, originalName string, src io.Reader) (storedName, path string, size int64, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("creating upload directory: %w", err)
	}

	storedName = fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405.000000"), secureFilename(originalName))
	path = filepath.Join(dir, storedName)

	dst, err := os.Create(path)
	if err != nil {
		return "", "", 0, fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	size, err = io.Copy(dst, src)
	if err != nil {
		os.Remove(path)
		return "", "", 0, fmt.Errorf("writing upload file: %w", err)
	}
	return storedName, path, size, nil
}
