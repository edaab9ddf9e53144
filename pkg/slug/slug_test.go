// Copyright (c) 2026 Nexus Portal. All rights reserved.
// Author: dev@nexusportal.app

package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"accents", "Résumé Été", "resume-ete"},
		{"punctuation", "B.Tech (CSE) 2024!", "b-tech-cse-2024"},
		{"collapses hyphens", "a  --  b", "a-b"},
		{"trims hyphens", "--edge--", "edge"},
		{"empty", "", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, From(test.input))
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"keeps extension", "Semester 1 Marksheet.PDF", "semester-1-marksheet.pdf"},
		{"accented name", "Résumé 2024.pdf", "resume-2024.pdf"},
		{"no extension", "certificate", "certificate"},
		{"only symbols", "###.png", "file.png"},
		{"empty", "", "file"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, FileName(test.input))
		})
	}
}
