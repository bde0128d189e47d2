// Package introspector fetches and decodes the per-project fuzz-introspector
// reports: the function summary, the debug-type catalog, and individual
// source files from the report's source-code mirror.
package introspector

import (
	"fmt"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var snapshotDatePattern = regexp.MustCompile(`^\d{8}$`)

// Locations are the report URLs for one project snapshot.
type Locations struct {
	Summary    string
	DebugInfo  string
	SourceBase string
}

// NewLocations derives the report locations for project at snapshotDate (YYYYMMDD).
func NewLocations(baseURL, project, snapshotDate string) (Locations, error) {
	project = strings.TrimSpace(project)
	if project == "" || strings.ContainsAny(project, "/ ") {
		return Locations{}, errors.Errorf("invalid project identifier %q", project)
	}
	if !snapshotDatePattern.MatchString(snapshotDate) {
		return Locations{}, errors.Errorf("invalid snapshot date %q: expected YYYYMMDD", snapshotDate)
	}

	base := fmt.Sprintf("%s/%s/inspector-report/%s/", strings.TrimRight(baseURL, "/"), project, snapshotDate)
	return Locations{
		Summary:    base + "summary.json",
		DebugInfo:  base + "all_debug_info.json",
		SourceBase: base + "source-code",
	}, nil
}
