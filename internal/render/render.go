// Package render formats a pipeline result for the terminal or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ctxprobe/internal/pipeline"
	"ctxprobe/internal/resolver"

	"gitlab.com/tozd/go/errors"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Write renders res to w in the named format.
func Write(w io.Writer, format string, res *pipeline.Result) error {
	switch format {
	case FormatJSON:
		return JSON(w, res)
	case FormatText, "":
		return Text(w, res)
	default:
		return errors.Errorf("unsupported output format: %s", format)
	}
}

func JSON(w io.Writer, res *pipeline.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Text writes the signature line, a summary of referenced types, each
// recovered definition, and the types that could not be resolved.
func Text(w io.Writer, res *pipeline.Result) error {
	var sb strings.Builder

	sb.WriteString("Function signature: " + res.Signature + "\n")
	if !res.Found {
		sb.WriteString(fmt.Sprintf("\n%s was not found in the %s report for %s.\n", res.Function, res.SnapshotDate, res.Project))
		_, err := io.WriteString(w, sb.String())
		return err
	}

	if r := res.Resolution; r != nil {
		if len(r.Types) > 0 {
			sb.WriteString("\nReferenced types:\n")
			for _, tc := range r.Types {
				sb.WriteString("  " + typeLine(tc) + "\n")
			}
			for _, tc := range r.Types {
				writeBody(&sb, tc)
			}
		}

		if len(r.Unresolved) > 0 {
			sb.WriteString("\nUnresolved types:\n")
			for _, u := range r.Unresolved {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", u.Name, u.Reason))
			}
		}

		sb.WriteString(fmt.Sprintf("\n%d of %d referenced types resolved.\n", r.Stats.Resolved, r.Stats.Attempted))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func typeLine(tc resolver.TypeContext) string {
	switch {
	case tc.Definition != nil:
		return fmt.Sprintf("%s  %s:%d-%d (%s)", tc.Name, tc.SourcePath, tc.Definition.StartLine, tc.Definition.EndLine, tc.Definition.Kind)
	case tc.Excerpt != nil:
		return fmt.Sprintf("%s  %s:%d-%d (excerpt)", tc.Name, tc.SourcePath, tc.Excerpt.StartLine, tc.Excerpt.EndLine)
	case tc.SourcePath != "":
		return fmt.Sprintf("%s  %s", tc.Name, tc.SourcePath)
	case tc.Record.SourceFile != "":
		return fmt.Sprintf("%s  %s:%d", tc.Name, tc.Record.SourceFile, tc.Record.SourceLine)
	default:
		return tc.Name
	}
}

func writeBody(sb *strings.Builder, tc resolver.TypeContext) {
	var content string
	switch {
	case tc.Definition != nil:
		content = tc.Definition.Content
	case tc.Excerpt != nil:
		content = tc.Excerpt.Content
	default:
		return
	}

	sb.WriteString(fmt.Sprintf("\n--- %s (%s) ---\n", tc.Name, tc.SourcePath))
	if tc.Definition != nil && tc.Definition.Description != "" {
		for _, line := range strings.Split(tc.Definition.Description, "\n") {
			sb.WriteString("// " + line + "\n")
		}
	}
	sb.WriteString(strings.TrimRight(content, "\n") + "\n")
}
