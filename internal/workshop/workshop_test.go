package workshop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisingdash/internal/dataset"
	"advisingdash/internal/stats"
)

const fixtureCSV = `Date Scheduled,Date Rescheduled,Where in the writing process are you? ,What is your current major? ,Have you applied to the Allen School before? 
2024-01-10,2024-01-15,"I am just getting started, I have a draft",Pre Sciences, Yes
2024-01-11,,I have a draft,computer science,no
2024-01-12,2024-01-14,I am nearly done,PreSciences,No
2024-01-13,2024-01-18,"i have a draft",Premajor,yes
2024-01-20,not a date,,  Computer Science  ,maybe
`

func loadFixture(t *testing.T) *Log {
	t.Helper()
	table, err := dataset.ReadCSV(strings.NewReader(fixtureCSV))
	require.NoError(t, err)
	log, err := Load(table)
	require.NoError(t, err)
	return log
}

func TestNormalizeMajor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pre Sciences", "Pre-Sciences"},
		{"pre-sciences", "Pre-Sciences"},
		{"PRESCIENCES", "Pre-Sciences"},
		{"premajor", "Pre-Sciences"},
		{"  computer science ", "Computer Science"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMajor(tt.in))
		})
	}
}

func TestSplitStages(t *testing.T) {
	assert.Equal(t, []string{"i am just getting started", "i have a draft"},
		SplitStages("I am just getting started, I have a draft"))
	assert.Empty(t, SplitStages(" , "))
	assert.Empty(t, SplitStages(""))
}

func TestLoad_MissingColumns(t *testing.T) {
	table := dataset.NewTable([]string{"Date Scheduled", "Major"}, [][]string{{"2024-01-01", "x"}})
	_, err := Load(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Date Rescheduled")
}

func TestLoad_Derivation(t *testing.T) {
	log := loadFixture(t)
	require.Len(t, log.Submissions, 5)

	first := log.Submissions[0]
	assert.True(t, first.HasScheduled)
	assert.True(t, first.HasRescheduled)
	assert.Equal(t, "Pre-Sciences", first.Major)
	assert.Equal(t, "yes", first.AppliedBefore)
	assert.Len(t, first.Stages, 2)

	last := log.Submissions[4]
	assert.False(t, last.HasRescheduled)
	assert.Empty(t, last.Stages)
	assert.Equal(t, "Computer Science", last.Major)
}

func TestAnalyze(t *testing.T) {
	r := Analyze(loadFixture(t), Options{PreviewRows: 2})

	assert.Equal(t, Summary{
		TotalSubmissions: 5,
		UniqueMajors:     2,
		Rescheduled:      3,
		AppliedYes:       2,
		AppliedNo:        2,
	}, r.Summary)

	assert.Equal(t, stats.Counts{
		{Label: StageGettingStarted, Value: 1},
		{Label: StageBrainstormed, Value: 0},
		{Label: StageDraft, Value: 3},
		{Label: StageNearlyDone, Value: 1},
	}, r.Funnel)

	assert.Equal(t, stats.Count{Label: StageDraft, Value: 3}, r.Stages[0])
	assert.Equal(t, stats.Counts{
		{Label: "Pre-Sciences", Value: 3},
		{Label: "Computer Science", Value: 2},
	}, r.Majors)

	row := indexOf(r.StageVsApplied.Rows, StageDraft)
	yes := indexOf(r.StageVsApplied.Cols, "yes")
	no := indexOf(r.StageVsApplied.Cols, "no")
	require.GreaterOrEqual(t, row, 0)
	assert.Equal(t, 2, r.StageVsApplied.Get(row, yes))
	assert.Equal(t, 1, r.StageVsApplied.Get(row, no))

	assert.Equal(t, stats.Counts{
		{Label: "2", Value: 1},
		{Label: "5", Value: 2},
	}, r.RescheduleLead)

	assert.Equal(t, 2, r.Preview.Len())
}

func TestAnalyze_Empty(t *testing.T) {
	table := dataset.NewTable(RequiredColumns, nil)
	log, err := Load(table)
	require.NoError(t, err)

	r := Analyze(log, Options{PreviewRows: 5})
	assert.Zero(t, r.Summary.TotalSubmissions)
	assert.Len(t, r.Funnel, len(FunnelStages))
	assert.True(t, r.StageVsApplied.Empty())
	assert.Empty(t, r.RescheduleLead)
	assert.Zero(t, r.Preview.Len())
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
