// Package dataset loads uploaded CSV and Excel exports into an in-memory
// Table of strings.
//
// Header lookups are tolerant: "What is your current major?" matches a
// column exported as "what is your current major? " because every header
// is normalized (lower-cased, trimmed, inner whitespace collapsed) before
// comparison. Cell values are returned trimmed; blank cells read as "".
//
// Typical use:
//
//	table, err := dataset.Read(file, header.Filename)
//	if err != nil {
//	    return err
//	}
//	if err := table.Require("Date Scheduled", "Calendar"); err != nil {
//	    return err
//	}
//	for i := 0; i < table.Len(); i++ {
//	    advisor := table.Value(i, "Calendar")
//	}
package dataset
