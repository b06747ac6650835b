// Package core provides the trend pipeline behind the dashboard.
//
// The package holds all domain logic independent of any UI or transport
// layer. It is used by the web handlers, the trends CLI and tests without
// modification.
//
// # Pipeline
//
// One render pass runs these steps in order:
//
//	Load -> Validate -> Filter -> BuildTrend -> Summarize / ExportCSV
//
// [Load] reads the first worksheet of a workbook (or a CSV file) into a
// [Table]. [Validate] trims header names and checks for the identity columns
// and at least one year column. [Filter] narrows the table to the selected
// areas and indicator. [BuildTrend] reshapes the matching rows from one
// column per year into one [TrendRecord] per row and year. [Summarize] and
// [ExportCSV] consume those records.
//
// # Snapshots
//
// [SnapshotCache] keeps the validated table of each data file keyed by path,
// modification time and size, so a render pass reuses the loaded table until
// the file changes or is invalidated. [Service] ties the cache and the
// pipeline together for one configured file.
//
// # Errors
//
// [LoadError] and [SchemaError] are fatal for the dashboard. A selection
// matching nothing returns [ErrEmptySelection], which callers show as a
// warning. [MapError] turns any of these into a coded [UserMessage].
package core
