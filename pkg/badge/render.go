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

package badge

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/template"
)

// Style picks one of the fixed badge layouts.
type Style string

const (
	// StylePlain is a 120x20 bar filled proportionally to the percentage.
	StylePlain Style = "plain"
	// StyleLabelled is a two-segment "label | value" badge with a gradient.
	StyleLabelled Style = "labelled"
)

// DefaultLabel is the left segment of labelled badges.
const DefaultLabel = "coverage"

// ContentType is the media type badges are served with.
const ContentType = "image/svg+xml"

// ParseStyle accepts "plain", "labelled" and "labeled".
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(StylePlain):
		return StylePlain, nil
	case string(StyleLabelled), "labeled":
		return StyleLabelled, nil
	}
	return "", fmt.Errorf("unknown badge style %q (want %q or %q)", s, StylePlain, StyleLabelled)
}

// Options control rendering. The zero value renders the default plain badge.
type Options struct {
	Style Style
	Label string
	Scale *Scale
}

var funcs = template.FuncMap{
	"xml": func(s string) (string, error) {
		var b bytes.Buffer
		if err := xml.EscapeText(&b, []byte(s)); err != nil {
			return "", err
		}
		return b.String(), nil
	},
}

var plainTemplate = template.Must(template.New(string(StylePlain)).Funcs(funcs).Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="120" height="20">
    <rect width="120" height="20" rx="3" fill="#555" />
    <rect width="{{.BarWidth}}" height="20" rx="3" fill="{{xml .Color}}" />
    <text x="60" y="15" font-size="11" fill="#fff" text-anchor="middle">{{.Value}}%</text>
    </svg>`))

var labelledTemplate = template.Must(template.New(string(StyleLabelled)).Funcs(funcs).Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="104" height="20">
    <linearGradient id="smooth" x2="0" y2="100%">
        <stop offset="0" stop-color="#bbb" stop-opacity=".1" />
        <stop offset="1" stop-opacity=".1" />
    </linearGradient>
    <mask id="round">
        <rect width="104" height="20" rx="3" fill="#fff" />
    </mask>
    <g mask="url(#round)">
        <rect width="61" height="20" fill="#555" />
        <rect x="61" width="43" height="20" fill="{{xml .Color}}" />
        <rect width="104" height="20" fill="url(#smooth)" />
    </g>
    <g fill="#fff" text-anchor="middle" font-family="DejaVu Sans,Verdana,Geneva,sans-serif" font-size="11">
        <text x="30.5" y="15" fill="#010101" fill-opacity=".3">{{xml .Label}}</text>
        <text x="30.5" y="14">{{xml .Label}}</text>
        <text x="82.5" y="15" fill="#010101" fill-opacity=".3">{{.Value}}%</text>
        <text x="82.5" y="14">{{.Value}}%</text>
    </g>
</svg>`))

type values struct {
	BarWidth string
	Color    string
	Label    string
	Value    string
}

// Render returns the SVG badge for p. Values above 100 or below 0 are drawn
// as they are.
func Render(p float64, o Options) ([]byte, error) {
	scale := DefaultScale()
	if o.Scale != nil {
		scale = *o.Scale
	}
	label := o.Label
	if label == "" {
		label = DefaultLabel
	}

	v := values{Color: scale.Color(p), Label: label}
	var tmpl *template.Template
	switch o.Style {
	case StylePlain, "":
		tmpl = plainTemplate
		v.BarWidth = shortest(math.Round(p*1.2*100) / 100)
		v.Value = plainPercent(p)
	case StyleLabelled:
		tmpl = labelledTemplate
		v.Value = FormatPercent(p)
	default:
		return nil, fmt.Errorf("unknown badge style %q", o.Style)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("rendering %s badge: %v", o.Style, err)
	}
	return buf.Bytes(), nil
}

// FormatPercent formats p with exactly one decimal, e.g. 85.46 -> "85.5".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// plainPercent keeps every significant digit of p but always shows at least
// one decimal, e.g. 85.46 -> "85.46" and 100 -> "100.0".
func plainPercent(p float64) string {
	s := shortest(p)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

func shortest(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
