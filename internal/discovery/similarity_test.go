// Reelquest - Natural-Language Media Discovery Engine
// Copyright 2026 Reelquest Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package discovery

import "testing"

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		min  float64
		max  float64
	}{
		{
			name: "identical",
			a:    "Inception",
			b:    "Inception",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "case and punctuation insensitive",
			a:    "the lord of the rings",
			b:    "The Lord of the Rings!",
			min:  1.0,
			max:  1.0,
		},
		{
			name: "minor typo stays above exact threshold",
			a:    "Interstellar",
			b:    "Interstelar",
			min:  0.9,
			max:  1.0,
		},
		{
			name: "token overlap rescues reordered words",
			a:    "Gump Forrest",
			b:    "Forrest Gump",
			min:  0.9,
			max:  1.0,
		},
		{
			name: "unrelated titles score low",
			a:    "Inception",
			b:    "Paddington",
			min:  0.0,
			max:  0.5,
		},
		{
			name: "empty query",
			a:    "",
			b:    "Inception",
			min:  0.0,
			max:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleSimilarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("TitleSimilarity(%q, %q) = %f, want in [%f, %f]",
					tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestTitleSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Forrest Gump", "Forest Gump"},
		{"The Matrix", "Matrix"},
		{"Alien", "Aliens"},
	}
	for _, p := range pairs {
		ab := TitleSimilarity(p[0], p[1])
		ba := TitleSimilarity(p[1], p[0])
		if ab != ba {
			t.Errorf("similarity not symmetric for %q/%q: %f vs %f", p[0], p[1], ab, ba)
		}
	}
}
