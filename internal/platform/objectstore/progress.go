// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package objectstore

import "io"

// ProgressReader wraps an [io.Reader] and reports cumulative bytes read
// through a [ProgressFunc].
//
// # Concurrency
//
// A ProgressReader belongs to a single upload and is not safe for
// concurrent use.
type ProgressReader struct {
	source      io.Reader
	total       int64
	transferred int64
	report      ProgressFunc
}

// NewProgressReader constructs a counting reader over source.
func NewProgressReader(source io.Reader, total int64, report ProgressFunc) *ProgressReader {
	return &ProgressReader{
		source: source,
		total:  total,
		report: report,
	}
}

// Read implements [io.Reader]. Every successful read emits one progress
// event, including the final read that carries io.EOF.
func (reader *ProgressReader) Read(buffer []byte) (int, error) {
	n, err := reader.source.Read(buffer)
	if n > 0 {
		reader.transferred += int64(n)
		if reader.report != nil {
			reader.report(reader.transferred, reader.total)
		}
	}
	return n, err
}
