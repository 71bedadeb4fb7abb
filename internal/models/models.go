// Package models defines the domain types shared across raido.
package models

import "time"

// FileMeta is a lightweight description of a content file, returned by
// directory listings. Err records why the file could not be fingerprinted;
// such entries carry no checksum and are skipped for the run.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
	Err       error     `json:"-"`
}

// Report summarizes one normalization run. Rewritten lists only files that
// were verified to have been written successfully.
type Report struct {
	Rewritten  []string  `json:"rewritten"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	FinishedAt time.Time `json:"finished_at"`
}
