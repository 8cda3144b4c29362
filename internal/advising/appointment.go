// Package advising derives per-appointment fields from an advising export
// and aggregates them into the advising dashboard report.
package advising

import (
	"strings"
	"time"

	"advisingdash/internal/categorize"
	"advisingdash/internal/dataset"
	"advisingdash/internal/textstats"
)

// Export column names.
const (
	ColDateScheduled = "Date Scheduled"
	ColFirstName     = "First Name"
	ColLastName      = "Last Name"
	ColAdvisor       = "Calendar"
	ColType          = "Type"
	ColStudentNumber = "Student Number"
	ColTopic         = "What would you like to talk about?"
)

// RequiredColumns must be present for an export to load.
var RequiredColumns = []string{ColDateScheduled, ColAdvisor, ColType, ColStudentNumber}

// Appointment is one row of an advising export with derived fields.
type Appointment struct {
	Row           int       `json:"row"`
	Scheduled     time.Time `json:"scheduled"`
	HasDate       bool      `json:"has_date"`
	FullName      string    `json:"full_name"`
	Advisor       string    `json:"advisor"`
	Type          string    `json:"type"`
	StudentNumber string    `json:"student_number"`
	Topic         string    `json:"topic"`
	TopicClean    string    `json:"topic_clean"`
	Category      string    `json:"category"`
}

// Log is a loaded advising export.
type Log struct {
	Table        *dataset.Table
	Appointments []Appointment
	HasTopics    bool
	Categories   []string
}

// Load validates the table and derives one Appointment per row.
func Load(t *dataset.Table, c *categorize.Categorizer) (*Log, error) {
	if err := t.Require(RequiredColumns...); err != nil {
		return nil, err
	}
	if c == nil {
		c = categorize.Default()
	}

	log := &Log{
		Table:        t,
		Appointments: make([]Appointment, t.Len()),
		HasTopics:    t.Has(ColTopic),
		Categories:   c.Names(),
	}

	for i := range log.Appointments {
		a := Appointment{
			Row:           i,
			FullName:      fullName(t.Value(i, ColFirstName), t.Value(i, ColLastName)),
			Advisor:       t.Value(i, ColAdvisor),
			Type:          t.Value(i, ColType),
			StudentNumber: t.Value(i, ColStudentNumber),
			Topic:         t.Value(i, ColTopic),
		}
		a.Scheduled, a.HasDate = dataset.ParseDate(t.Value(i, ColDateScheduled))
		a.TopicClean = textstats.CleanTopic(a.Topic)
		a.Category = c.Categorize(a.TopicClean)
		log.Appointments[i] = a
	}

	return log, nil
}

func fullName(first, last string) string {
	first = strings.ToLower(strings.TrimSpace(first))
	last = strings.ToLower(strings.TrimSpace(last))
	if first == "" && last == "" {
		return ""
	}
	return first + " " + last
}
