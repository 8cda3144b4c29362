package advising

import (
	"math"
	"strconv"
	"time"

	"advisingdash/internal/dataset"
	"advisingdash/internal/stats"
	"advisingdash/internal/textstats"
)

// Repeat status labels.
const (
	StatusFirstTime = "First-Time"
	StatusRepeat    = "Repeat"
)

const (
	monthLayout         = "January 2006"
	timelineMonthLayout = "2006-01"
)

// Weekdays are the days reported by the day-of-week chart.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Summary holds the headline metrics.
type Summary struct {
	TotalAppointments int `json:"total_appointments"`
	UniqueStudents    int `json:"unique_students"`
	RepeatStudents    int `json:"repeat_students"`
}

// GapStats describes the spread between each repeat student's first and
// last visit, in whole days.
type GapStats struct {
	Students int     `json:"students"`
	Average  float64 `json:"average"`
	Shortest int     `json:"shortest"`
	Longest  int     `json:"longest"`
}

// AnalyzeOptions tunes the text and preview sections of the report.
type AnalyzeOptions struct {
	TopWords      int
	CloudWords    int
	MinWordLength int
	PreviewRows   int
	Stopwords     textstats.Stopwords
}

// DefaultAnalyzeOptions mirrors the dashboard defaults.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		TopWords:      15,
		CloudWords:    100,
		MinWordLength: 2,
		PreviewRows:   5,
		Stopwords:     textstats.DefaultStopwords(),
	}
}

// Report is every aggregate shown on the advising dashboard.
type Report struct {
	Filter  Filter        `json:"filter"`
	Options FilterOptions `json:"options"`
	Summary Summary       `json:"summary"`

	HasDates        bool            `json:"has_dates"`
	Weekday         stats.Counts    `json:"weekday"`
	Monthly         stats.Counts    `json:"monthly"`
	AdvisorMonthly  *stats.Crosstab `json:"advisor_monthly"`
	RepeatTimeline  stats.Counts    `json:"repeat_timeline"`
	RepeatStatus    *stats.Crosstab `json:"repeat_status"`
	AdvisorCategory *stats.Crosstab `json:"advisor_category"`
	RepeatFrequency stats.Counts    `json:"repeat_frequency"`

	HasGaps bool     `json:"has_gaps"`
	Gaps    GapStats `json:"gaps"`

	HasTopics  bool         `json:"has_topics"`
	TopWords   stats.Counts `json:"top_words"`
	CloudWords stats.Counts `json:"cloud_words"`

	Preview *dataset.Table `json:"-"`
}

// Analyze filters the log and computes the report.
func Analyze(log *Log, filter Filter, opts AnalyzeOptions) *Report {
	if opts.Stopwords == nil {
		opts.Stopwords = textstats.DefaultStopwords()
	}

	options := Options(log.Appointments)
	appts := filter.Apply(log.Appointments)
	visits := visitCounts(appts)

	r := &Report{
		Filter:          filter.Effective(options),
		Options:         options,
		Summary:         summarize(appts, visits),
		Weekday:         WeekdayCounts(appts),
		Monthly:         MonthlyCounts(appts),
		AdvisorMonthly:  AdvisorMonthly(appts),
		RepeatTimeline:  RepeatTimeline(appts, visits),
		RepeatStatus:    RepeatStatusByAdvisor(appts, visits),
		AdvisorCategory: AdvisorCategory(appts, log.Categories),
		RepeatFrequency: RepeatFrequency(visits),
		HasTopics:       log.HasTopics,
	}

	for _, a := range appts {
		if a.HasDate {
			r.HasDates = true
			break
		}
	}

	r.Gaps, r.HasGaps = RepeatGaps(appts, visits)

	if log.HasTopics {
		texts := make([]string, len(appts))
		for i, a := range appts {
			texts[i] = a.TopicClean
		}
		words := textstats.WordFrequencies(texts, opts.Stopwords, opts.MinWordLength)
		r.TopWords = words.Top(opts.TopWords)
		r.CloudWords = words.Top(opts.CloudWords)
	}

	rows := make([]int, 0, opts.PreviewRows)
	for _, a := range appts {
		if len(rows) == opts.PreviewRows {
			break
		}
		rows = append(rows, a.Row)
	}
	r.Preview = log.Table.Select(rows)

	return r
}

// visitCounts maps each non-blank student number to its appointment count.
func visitCounts(appts []Appointment) map[string]int {
	visits := make(map[string]int)
	for _, a := range appts {
		if a.StudentNumber != "" {
			visits[a.StudentNumber]++
		}
	}
	return visits
}

func summarize(appts []Appointment, visits map[string]int) Summary {
	s := Summary{
		TotalAppointments: len(appts),
		UniqueStudents:    len(visits),
	}
	for _, n := range visits {
		if n > 1 {
			s.RepeatStudents++
		}
	}
	return s
}

// WeekdayCounts counts dated appointments per weekday, Monday to Friday.
func WeekdayCounts(appts []Appointment) stats.Counts {
	days := make([]string, 0, len(appts))
	for _, a := range appts {
		if a.HasDate {
			days = append(days, a.Scheduled.Weekday().String())
		}
	}
	return stats.Reindex(stats.ValueCounts(days), Weekdays)
}

// MonthlyCounts counts dated appointments per calendar month, oldest first.
func MonthlyCounts(appts []Appointment) stats.Counts {
	months := make([]string, 0, len(appts))
	for _, a := range appts {
		if a.HasDate {
			months = append(months, a.Scheduled.Format(monthLayout))
		}
	}
	return stats.SortByLabel(stats.ValueCounts(months), monthLess(monthLayout))
}

// AdvisorMonthly crosstabs month against advisor.
func AdvisorMonthly(appts []Appointment) *stats.Crosstab {
	months := make([]string, len(appts))
	advisors := make([]string, len(appts))
	for i, a := range appts {
		if a.HasDate {
			months[i] = a.Scheduled.Format(monthLayout)
		}
		advisors[i] = a.Advisor
	}
	return stats.NewCrosstab("Month", "Advisor", months, advisors, stats.CrosstabOptions{
		RowLess: monthLess(monthLayout),
	})
}

// RepeatTimeline counts, per month, the distinct repeat students seen.
func RepeatTimeline(appts []Appointment, visits map[string]int) stats.Counts {
	seen := make(map[string]map[string]struct{})
	for _, a := range appts {
		if !a.HasDate || visits[a.StudentNumber] < 2 {
			continue
		}
		month := a.Scheduled.Format(timelineMonthLayout)
		if seen[month] == nil {
			seen[month] = make(map[string]struct{})
		}
		seen[month][a.StudentNumber] = struct{}{}
	}

	out := make(stats.Counts, 0, len(seen))
	for month, students := range seen {
		out = append(out, stats.Count{Label: month, Value: len(students)})
	}
	return stats.SortByLabel(out, stats.Lexical)
}

// RepeatStatusByAdvisor counts appointments per advisor split by whether
// the student visited more than once. Blank student numbers count as
// first-time.
func RepeatStatusByAdvisor(appts []Appointment, visits map[string]int) *stats.Crosstab {
	advisors := make([]string, len(appts))
	statuses := make([]string, len(appts))
	for i, a := range appts {
		advisors[i] = a.Advisor
		statuses[i] = StatusFirstTime
		if visits[a.StudentNumber] > 1 {
			statuses[i] = StatusRepeat
		}
	}
	return stats.NewCrosstab("Advisor", "Repeat Status", advisors, statuses, stats.CrosstabOptions{
		FixedCols: []string{StatusFirstTime, StatusRepeat},
	})
}

// AdvisorCategory crosstabs advisor against topic category. Categories
// with no appointments are left out; the rest keep categoryOrder.
func AdvisorCategory(appts []Appointment, categoryOrder []string) *stats.Crosstab {
	advisors := make([]string, len(appts))
	categories := make([]string, len(appts))
	for i, a := range appts {
		advisors[i] = a.Advisor
		categories[i] = a.Category
	}

	rank := make(map[string]int, len(categoryOrder))
	for i, c := range categoryOrder {
		rank[c] = i
	}
	colLess := func(a, b string) bool {
		ra, okA := rank[a]
		rb, okB := rank[b]
		switch {
		case okA && okB:
			return ra < rb
		case okA != okB:
			return okA
		default:
			return a < b
		}
	}

	return stats.NewCrosstab("Advisor", "Category", advisors, categories, stats.CrosstabOptions{
		ColLess: colLess,
	})
}

// RepeatFrequency maps visit counts to the number of students with that
// many visits, fewest visits first.
func RepeatFrequency(visits map[string]int) stats.Counts {
	perStudent := make([]string, 0, len(visits))
	for _, n := range visits {
		perStudent = append(perStudent, strconv.Itoa(n))
	}
	return stats.SortByLabel(stats.ValueCounts(perStudent), stats.Numeric)
}

// RepeatGaps measures, for every repeat student with at least one dated
// visit, the days between their earliest and latest appointment.
func RepeatGaps(appts []Appointment, visits map[string]int) (GapStats, bool) {
	type span struct{ first, last time.Time }
	spans := make(map[string]*span)

	for _, a := range appts {
		if !a.HasDate || visits[a.StudentNumber] < 2 {
			continue
		}
		s, ok := spans[a.StudentNumber]
		if !ok {
			spans[a.StudentNumber] = &span{first: a.Scheduled, last: a.Scheduled}
			continue
		}
		if a.Scheduled.Before(s.first) {
			s.first = a.Scheduled
		}
		if a.Scheduled.After(s.last) {
			s.last = a.Scheduled
		}
	}

	if len(spans) == 0 {
		return GapStats{}, false
	}

	g := GapStats{Students: len(spans), Shortest: math.MaxInt}
	total := 0
	for _, s := range spans {
		days := int(s.last.Sub(s.first).Hours() / 24)
		total += days
		if days < g.Shortest {
			g.Shortest = days
		}
		if days > g.Longest {
			g.Longest = days
		}
	}
	g.Average = math.Round(float64(total)/float64(len(spans))*10) / 10
	return g, true
}

func monthLess(layout string) func(a, b string) bool {
	return func(a, b string) bool {
		ta, errA := time.Parse(layout, a)
		tb, errB := time.Parse(layout, b)
		if errA != nil || errB != nil {
			return a < b
		}
		return ta.Before(tb)
	}
}
