// Package workshop derives fields from an essay-workshop sign-up export and
// aggregates them into the workshop dashboard report.
package workshop

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"advisingdash/internal/dataset"
)

// Export column names. Exports often carry trailing spaces on the question
// headers; lookups ignore them.
const (
	ColDateScheduled   = "Date Scheduled"
	ColDateRescheduled = "Date Rescheduled"
	ColWritingStage    = "Where in the writing process are you?"
	ColMajor           = "What is your current major?"
	ColAppliedBefore   = "Have you applied to the Allen School before?"
)

// RequiredColumns must be present for an export to load.
var RequiredColumns = []string{ColDateScheduled, ColDateRescheduled, ColWritingStage, ColMajor, ColAppliedBefore}

// Canonical writing stages, earliest first.
const (
	StageGettingStarted = "i am just getting started"
	StageBrainstormed   = "i have brainstormed but not yet drafted"
	StageDraft          = "i have a draft"
	StageNearlyDone     = "i am nearly done"
)

// FunnelStages orders the funnel chart.
var FunnelStages = []string{StageGettingStarted, StageBrainstormed, StageDraft, StageNearlyDone}

var preSciences = regexp.MustCompile(`pre[\s\-]?sciences|presciences|premajor`)

// Submission is one row of a workshop export with derived fields.
type Submission struct {
	Row            int       `json:"row"`
	Scheduled      time.Time `json:"scheduled"`
	HasScheduled   bool      `json:"has_scheduled"`
	Rescheduled    time.Time `json:"rescheduled"`
	HasRescheduled bool      `json:"has_rescheduled"`
	Stages         []string  `json:"stages"`
	Major          string    `json:"major"`
	AppliedBefore  string    `json:"applied_before"`
}

// Log is a loaded workshop export.
type Log struct {
	Table       *dataset.Table
	Submissions []Submission
}

// Load validates the table and derives one Submission per row.
func Load(t *dataset.Table) (*Log, error) {
	if err := t.Require(RequiredColumns...); err != nil {
		return nil, err
	}

	log := &Log{Table: t, Submissions: make([]Submission, t.Len())}
	for i := range log.Submissions {
		s := Submission{
			Row:           i,
			Stages:        SplitStages(t.Value(i, ColWritingStage)),
			Major:         NormalizeMajor(t.Value(i, ColMajor)),
			AppliedBefore: strings.ToLower(strings.TrimSpace(t.Value(i, ColAppliedBefore))),
		}
		s.Scheduled, s.HasScheduled = dataset.ParseISODate(t.Value(i, ColDateScheduled))
		s.Rescheduled, s.HasRescheduled = dataset.ParseISODate(t.Value(i, ColDateRescheduled))
		log.Submissions[i] = s
	}
	return log, nil
}

// SplitStages lower-cases a multi-select answer and splits it on commas,
// dropping blank entries.
func SplitStages(answer string) []string {
	parts := strings.Split(strings.ToLower(answer), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeMajor folds the spellings of the pre-sciences track together and
// title-cases the result. Blank input stays blank.
func NormalizeMajor(major string) string {
	major = strings.ToLower(strings.TrimSpace(major))
	if major == "" {
		return ""
	}
	major = preSciences.ReplaceAllString(major, "pre-sciences")
	return cases.Title(language.English).String(major)
}
