package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/git"
	"git.home.luguber.info/inful/assetbuilder/internal/version"
)

// ReportSchemaVersion is bumped whenever a field changes meaning.
const ReportSchemaVersion = 1

// Report is the JSON document written by `build --report`.
type Report struct {
	SchemaVersion  int                      `json:"schema_version"`
	BuildID        string                   `json:"build_id"`
	Version        string                   `json:"version"`
	Revision       git.Revision             `json:"revision"`
	State          State                    `json:"state"`
	Outcome        string                   `json:"outcome"`
	Source         string                   `json:"source"`
	Output         string                   `json:"output"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	DurationMS     int64                    `json:"duration_ms"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	Succeeded      []string                 `json:"succeeded"`
	Failed         map[string]string        `json:"failed"`
	Warnings       []string                 `json:"warnings"`
	Themes         []ThemeReport            `json:"themes"`
	Excluded       int                      `json:"excluded"`
	Bytes          int64                    `json:"bytes"`
	Error          string                   `json:"error,omitempty"`
}

// ThemeReport is the per-theme part of a Report.
type ThemeReport struct {
	Name     string   `json:"name"`
	Strategy string   `json:"strategy"`
	Output   string   `json:"output"`
	Status   string   `json:"status"`
	Inputs   []string `json:"inputs,omitempty"`
	Size     int64    `json:"size"`
	Error    string   `json:"error,omitempty"`
}

// NewReport converts a result (and the fatal error, if any) into a Report.
func NewReport(res *BuildResult, fatal error) *Report {
	r := &Report{
		SchemaVersion:  ReportSchemaVersion,
		BuildID:        res.BuildID,
		Version:        version.Version,
		Revision:       res.Revision,
		State:          res.State,
		Outcome:        string(res.Outcome()),
		Source:         res.SourceRoot,
		Output:         res.OutputRoot,
		Start:          res.StartTime,
		End:            res.EndTime,
		DurationMS:     res.Duration.Milliseconds(),
		StageDurations: res.StageDurations,
		Succeeded:      res.Succeeded,
		Failed:         make(map[string]string, len(res.Failed)),
		Warnings:       res.Warnings,
		Themes:         make([]ThemeReport, 0, len(res.Themes)),
		Excluded:       res.Excluded,
		Bytes:          res.Bytes,
	}
	if fatal != nil {
		r.Error = fatal.Error()
	}
	for p, err := range res.Failed {
		if err != nil {
			r.Failed[p] = err.Error()
		} else {
			r.Failed[p] = "unknown error"
		}
	}
	for _, t := range res.Themes {
		if t == nil {
			continue
		}
		tr := ThemeReport{
			Name:     t.Name,
			Strategy: string(t.Strategy),
			Output:   t.Output,
			Status:   string(t.Status),
			Inputs:   t.Inputs,
			Size:     t.Size,
		}
		if t.Err != nil {
			tr.Error = t.Err.Error()
		}
		r.Themes = append(r.Themes, tr)
	}
	if r.Succeeded == nil {
		r.Succeeded = []string{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.StageDurations == nil {
		r.StageDurations = map[string]time.Duration{}
	}
	return r
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("build=%s state=%s outcome=%s files=%d themes=%d failed=%d warnings=%d excluded=%d duration=%dms",
		r.BuildID, r.State, r.Outcome, len(r.Succeeded), len(r.Themes), len(r.Failed), len(r.Warnings), r.Excluded, r.DurationMS)
}

// FailedPaths returns the keys of Failed in sorted order.
func (r *Report) FailedPaths() []string {
	out := make([]string, 0, len(r.Failed))
	for p := range r.Failed {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Persist writes the report to path atomically (temp file + rename).
func (r *Report) Persist(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("ensure dir for report: %w", err)
		}
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(jb, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report json: %w", err)
	}
	return nil
}
