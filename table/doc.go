// Package table implements the data table view: a filter, then a stable
// column sort, then pagination over an immutable row set, plus CSV, JSON and
// Parquet export of the filtered and sorted rows.
//
// A View is single-owner state. Servers rebuild one per request from the
// persisted rows and the request's filter, sort and page parameters:
//
//	v := table.New(rows, table.WithTitle("Employees"))
//	v.SetFilter("eng")
//	v.ToggleSort("salary")
//	v.SetPage(2)
//	page := v.Page()
//	fmt.Println(v.Summary()) // Showing 11 to 20 of 42 results
package table
