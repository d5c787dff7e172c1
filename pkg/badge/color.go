/*
Copyright 2026 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package badge renders a coverage percentage as a small SVG badge.
package badge

const (
	// DefaultRedBelow is the percentage under which a badge is red.
	DefaultRedBelow = 80
	// DefaultYellowBelow is the percentage under which a badge is yellow.
	DefaultYellowBelow = 90

	Red    = "red"
	Yellow = "yellow"
	Green  = "green"
)

// Scale maps a percentage to one of three fill colors.
type Scale struct {
	RedBelow    float64
	YellowBelow float64
	Red         string
	Yellow      string
	Green       string
}

// DefaultScale is red below 80, yellow below 90 and green otherwise.
func DefaultScale() Scale {
	return Scale{
		RedBelow:    DefaultRedBelow,
		YellowBelow: DefaultYellowBelow,
		Red:         Red,
		Yellow:      Yellow,
		Green:       Green,
	}
}

// Color returns the fill for p. Out-of-range values are not rejected.
func (s Scale) Color(p float64) string {
	switch {
	case p < s.RedBelow:
		return s.Red
	case p < s.YellowBelow:
		return s.Yellow
	default:
		return s.Green
	}
}

// Color returns the default fill for p.
func Color(p float64) string {
	return DefaultScale().Color(p)
}
