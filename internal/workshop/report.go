package workshop

import (
	"strconv"

	"advisingdash/internal/dataset"
	"advisingdash/internal/stats"
)

// Summary holds the headline workshop metrics.
type Summary struct {
	TotalSubmissions int `json:"total_submissions"`
	UniqueMajors     int `json:"unique_majors"`
	Rescheduled      int `json:"rescheduled"`
	AppliedYes       int `json:"applied_yes"`
	AppliedNo        int `json:"applied_no"`
}

// Report is every aggregate shown on the workshop dashboard.
type Report struct {
	Summary        Summary         `json:"summary"`
	Funnel         stats.Counts    `json:"funnel"`
	Stages         stats.Counts    `json:"stages"`
	Majors         stats.Counts    `json:"majors"`
	StageVsApplied *stats.Crosstab `json:"stage_vs_applied"`
	RescheduleLead stats.Counts    `json:"reschedule_lead"`

	Preview *dataset.Table `json:"-"`
}

// Options tunes the workshop report.
type Options struct {
	PreviewRows int
}

// Analyze computes the workshop report.
func Analyze(log *Log, opts Options) *Report {
	subs := log.Submissions

	var (
		stages, stageApplied, majors, leads []string
		summary                             = Summary{TotalSubmissions: len(subs)}
	)

	for _, s := range subs {
		majors = append(majors, s.Major)
		if s.HasRescheduled {
			summary.Rescheduled++
		}
		switch s.AppliedBefore {
		case "yes":
			summary.AppliedYes++
		case "no":
			summary.AppliedNo++
		}
		for _, stage := range s.Stages {
			stages = append(stages, stage)
			stageApplied = append(stageApplied, s.AppliedBefore)
		}
		if s.HasScheduled && s.HasRescheduled {
			days := int(s.Rescheduled.Sub(s.Scheduled).Hours() / 24)
			leads = append(leads, strconv.Itoa(days))
		}
	}
	summary.UniqueMajors = stats.NUnique(majors)

	stageCounts := stats.ValueCounts(stages)

	r := &Report{
		Summary:        summary,
		Funnel:         stats.Reindex(stageCounts, FunnelStages),
		Stages:         stageCounts,
		Majors:         stats.ValueCounts(majors),
		StageVsApplied: stats.NewCrosstab("Writing Stage", "Applied Before", stages, stageApplied, stats.CrosstabOptions{}),
		RescheduleLead: stats.SortByLabel(stats.ValueCounts(leads), stats.Numeric),
	}

	r.Preview = log.Table.Head(opts.PreviewRows)

	return r
}
