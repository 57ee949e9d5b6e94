// Package build runs a sitesearch build: it discovers the site's routes,
// resolves them to rendered pages and assembles the language runtime for
// the search index, then records metrics for the run.
//
// Route resolution and the language build share no state and run
// concurrently. Only a language failure aborts a build; unresolved routes
// are reported in the result and logged.
package build
