// Package zip builds in-memory zip archives for content exports.
package zip

import (
	"archive/zip"
	"bytes"
)

// Entry is one file in the archive.
type Entry struct {
	Filename string
	Data     []byte
}

// Archive writes the entries into a zip held in memory. Entries that cannot
// be created are skipped.
func Archive(entries []Entry) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
