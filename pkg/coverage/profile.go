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

package coverage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
	"golang.org/x/tools/cover"
)

// LoadProfiles parses every cover profile matching patterns and merges them
// into one set of per-file profiles. Patterns may use ** globs.
func LoadProfiles(patterns []string) ([]*cover.Profile, error) {
	paths, err := expand(patterns)
	if err != nil {
		return nil, err
	}

	var merged []*cover.Profile
	for _, path := range paths {
		profiles, err := cover.ParseProfiles(path)
		if err != nil {
			return nil, undetermined("parsing profile %s: %v", path, err)
		}
		if merged, err = MergeProfiles(merged, profiles); err != nil {
			return nil, undetermined("merging profile %s: %v", path, err)
		}
	}
	return merged, nil
}

func expand(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	for _, pattern := range patterns {
		matches := []string{pattern}
		if strings.ContainsAny(pattern, "*?[{") {
			var err error
			if matches, err = zglob.Glob(pattern); err != nil {
				return nil, undetermined("expanding %q: %v", pattern, err)
			}
			sort.Strings(matches)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	if len(paths) == 0 {
		return nil, undetermined("no cover profiles match %v", patterns)
	}
	return paths, nil
}

// MergeProfiles merges two sets of profiles sorted by file name. Profiles of
// the same file must describe identical blocks; their counts are summed.
func MergeProfiles(a, b []*cover.Profile) ([]*cover.Profile, error) {
	byName := make(map[string]*cover.Profile, len(a)+len(b))
	var names []string
	for _, set := range [][]*cover.Profile{a, b} {
		for _, p := range set {
			existing, ok := byName[p.FileName]
			if !ok {
				cp := deepCopyProfile(*p)
				byName[p.FileName] = &cp
				names = append(names, p.FileName)
				continue
			}
			if err := ensureProfilesMatch(existing, p); err != nil {
				return nil, err
			}
			for i := range existing.Blocks {
				existing.Blocks[i].Count += p.Blocks[i].Count
			}
		}
	}

	sort.Strings(names)
	result := make([]*cover.Profile, 0, len(names))
	for _, name := range names {
		result = append(result, byName[name])
	}
	return result, nil
}

// FromProfiles returns covered statements over all statements, as a
// percentage. A block counts as covered when it ran at least once.
func FromProfiles(profiles []*cover.Profile) (float64, error) {
	var covered, total int
	for _, p := range profiles {
		for _, blk := range p.Blocks {
			total += blk.NumStmt
			if blk.Count > 0 {
				covered += blk.NumStmt
			}
		}
	}
	if total == 0 {
		return 0, undetermined("profiles contain no statements")
	}
	return float64(covered) / float64(total) * 100, nil
}

func deepCopyProfile(profile cover.Profile) cover.Profile {
	p := profile
	p.Blocks = make([]cover.ProfileBlock, len(profile.Blocks))
	copy(p.Blocks, profile.Blocks)
	return p
}

// blocksEqual ignores Count.
func blocksEqual(a cover.ProfileBlock, b cover.ProfileBlock) bool {
	return a.StartCol == b.StartCol && a.StartLine == b.StartLine &&
		a.EndCol == b.EndCol && a.EndLine == b.EndLine && a.NumStmt == b.NumStmt
}

func ensureProfilesMatch(a *cover.Profile, b *cover.Profile) error {
	if len(a.Blocks) != len(b.Blocks) {
		return fmt.Errorf("file block count for %s mismatches (%d vs %d)", a.FileName, len(a.Blocks), len(b.Blocks))
	}
	if a.Mode != b.Mode {
		return fmt.Errorf("mode for %s mismatches (%s vs %s)", a.FileName, a.Mode, b.Mode)
	}
	for i, ba := range a.Blocks {
		bb := b.Blocks[i]
		if !blocksEqual(ba, bb) {
			return fmt.Errorf("coverage block mismatch: block #%d for %s (%+v mismatches %+v)", i, a.FileName, ba, bb)
		}
	}
	return nil
}
