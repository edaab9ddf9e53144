// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package objectstore_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusportal/nexus/internal/platform/objectstore"
)

/*
TestProgressReader_ReportsCumulativeBytes verifies that every read emits a
cumulative (transferred, total) event and that the final event equals the
full payload size.
*/
func TestProgressReader_ReportsCumulativeBytes(t *testing.T) {
	payload := "certificate-bytes-0123456789"
	total := int64(len(payload))

	var events [][2]int64
	reader := objectstore.NewProgressReader(strings.NewReader(payload), total, func(transferred, totalBytes int64) {
		events = append(events, [2]int64{transferred, totalBytes})
	})

	// Read in small chunks to force multiple progress events.
	buffer := make([]byte, 7)
	consumed, err := io.CopyBuffer(io.Discard, reader, buffer)
	require.NoError(t, err)
	assert.Equal(t, total, consumed)

	require.NotEmpty(t, events)

	// Events are monotonically increasing and all carry the same total.
	previous := int64(0)
	for _, event := range events {
		assert.Greater(t, event[0], previous)
		assert.Equal(t, total, event[1])
		previous = event[0]
	}

	// Terminal event covers the entire payload.
	assert.Equal(t, total, events[len(events)-1][0])
}

/*
TestProgressReader_NilCallback verifies the reader degrades to a plain
pass-through when no side channel is attached.
*/
func TestProgressReader_NilCallback(t *testing.T) {
	payload := "no-listeners"
	reader := objectstore.NewProgressReader(strings.NewReader(payload), int64(len(payload)), nil)

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, payload, string(content))
}
