// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files against the message ids used in the
// Go sources. It reports ids that are used but missing from a locale, ids
// that no code refers to, and string literals that look like user-facing
// text which never went through i18n.T.
//
// Run it from the repository root:
//
//	go run ./tools/i18n-linter
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
)

// Location stores the file and line number of a found string.
type Location struct {
	Filepath string
	Line     int
}

// Report is the outcome of one lint run.
type Report struct {
	Used         map[string]struct{}
	Primary      map[string]struct{}
	Undefined    []string            // used in code, absent from the primary locale
	Orphaned     []string            // in the primary locale, never used
	Missing      map[string][]string // locale file -> ids it lacks
	Untranslated map[string][]Location
}

// Failed reports whether the run found errors. Orphans and untranslated
// literals are warnings only.
func (r *Report) Failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, ids := range r.Missing {
		if len(ids) > 0 {
			return true
		}
	}
	return false
}

func main() {
	rep, err := lint(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(2)
	}
	printReport(os.Stdout, rep)
	if rep.Failed() {
		os.Exit(1)
	}
}

// lint runs every check against the repository rooted at root.
func lint(root string) (*Report, error) {
	used, err := findUsedKeys(root)
	if err != nil {
		return nil, fmt.Errorf("scanning sources: %w", err)
	}
	dir := filepath.Join(root, localesDir)
	primary, err := loadKeysFromLocale(filepath.Join(dir, primaryLocale))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", primaryLocale, err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	rep := &Report{Used: used, Primary: primary, Missing: map[string][]string{}}
	rep.Undefined = difference(used, primary)
	rep.Orphaned = difference(primary, used)
	for _, file := range files {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
		rep.Missing[filepath.Base(file)] = difference(primary, keys)
	}

	rep.Untranslated, err = findUntranslatedStrings(root, primary)
	if err != nil {
		return nil, fmt.Errorf("scanning literals: %w", err)
	}
	return rep, nil
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func printReport(w io.Writer, r *Report) {
	_, _ = fmt.Fprintf(w, "%d ids used in code, %d ids in %s\n", len(r.Used), len(r.Primary), primaryLocale)

	section := func(title string, items []string) {
		_, _ = fmt.Fprintf(w, "\n%s:\n", title)
		if len(items) == 0 {
			_, _ = fmt.Fprintln(w, "  none")
		}
		for _, it := range items {
			_, _ = fmt.Fprintf(w, "  - %s\n", it)
		}
	}
	section("Undefined ids (used but not in "+primaryLocale+")", r.Undefined)
	section("Orphaned ids (defined but unused)", r.Orphaned)

	names := make([]string, 0, len(r.Missing))
	for name := range r.Missing {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		section("Missing from "+name, r.Missing[name])
	}

	literals := make([]string, 0, len(r.Untranslated))
	for lit, locs := range r.Untranslated {
		literals = append(literals, fmt.Sprintf("%q (%s:%d)", lit, locs[0].Filepath, locs[0].Line))
	}
	sort.Strings(literals)
	section("Possibly untranslated literals", literals)

	switch {
	case r.Failed():
		_, _ = fmt.Fprintln(w, "\nFAIL")
	case len(r.Orphaned) > 0:
		_, _ = fmt.Fprintln(w, "\nOK with warnings")
	default:
		_, _ = fmt.Fprintln(w, "\nOK")
	}
}

var (
	usedKeyRe     = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	// fn("literal") with an optional package qualifier.
	callRe        = regexp.MustCompile(`([a-zA-Z0-9_]+\.)?([a-zA-Z0-9_]+)\("([^"]+)"`)
	keyLikeRe     = regexp.MustCompile(`^[a-z_]+\.[a-z._]+$`)
	allCapsRe     = regexp.MustCompile(`^[A-Z_]+$`)
	formatOnlyRe  = regexp.MustCompile(`^[\s%.,:;()#\d\w-]*%[\s\w-]*$`)
	ignoredCalls  = map[string]struct{}{"Print": {}, "Println": {}, "Printf": {}, "Fatal": {}, "Fatalf": {}, "WriteString": {}}
	loggingCalls  = map[string]struct{}{"Debugf": {}, "Infof": {}, "Warnf": {}, "Errorf": {}, "Debug": {}, "Info": {}, "Warn": {}, "Error": {}}
	ignoredPrefix = []string{"file:", "http", "2006-", "-", "{$"}
)

// walkGo calls fn for every non-test Go file below root, skipping the tools
// and example trees.
func walkGo(root string, fn func(path string, content []byte) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return fn(path, content)
	})
}

// findUsedKeys scans all .go files for i18n.T("id") calls. Ids built at
// runtime are not seen and show up as orphans.
func findUsedKeys(root string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	err := walkGo(root, func(_ string, content []byte) error {
		for _, m := range usedKeyRe.FindAllStringSubmatch(string(content), -1) {
			keys[m[1]] = struct{}{}
		}
		return nil
	})
	return keys, err
}

// findUntranslatedStrings flags string literals passed to functions that
// look like prose and are not translation ids.
func findUntranslatedStrings(root string, known map[string]struct{}) (map[string][]Location, error) {
	found := make(map[string][]Location)
	err := walkGo(root, func(path string, content []byte) error {
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range callRe.FindAllStringSubmatch(line, -1) {
				fn, lit := m[2], m[3]
				if !looksUntranslated(fn, lit, known) {
					continue
				}
				found[lit] = append(found[lit], Location{Filepath: path, Line: i + 1})
			}
		}
		return nil
	})
	return found, err
}

func looksUntranslated(fn, lit string, known map[string]struct{}) bool {
	if _, ok := ignoredCalls[fn]; ok {
		return false
	}
	// Log lines stay English.
	if _, ok := loggingCalls[fn]; ok {
		return false
	}
	if _, ok := known[lit]; ok {
		return false
	}
	if len(lit) < 4 || keyLikeRe.MatchString(lit) || allCapsRe.MatchString(lit) {
		return false
	}
	for _, p := range ignoredPrefix {
		if strings.HasPrefix(lit, p) {
			return false
		}
	}
	if formatOnlyRe.MatchString(lit) && !strings.Contains(lit, " ") {
		return false
	}
	return strings.Contains(lit, " ")
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into dot-separated keys.
func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	case []any:
		for i, val := range v {
			flattenYAML(fmt.Sprintf("%s[%d]", prefix, i), val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
