// Package viewmodel projects a quote snapshot into chart series and table rows.
//
// Build is a pure function: identical input produces identical output, and a
// series color depends only on its position in the snapshot.
package viewmodel
