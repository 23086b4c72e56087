// Package search locates a single record in month-paginated schedule data.
//
// A search starts at a reference instant and examines one calendar month per
// window, moving forward or backward a bounded number of months. Each window
// costs exactly one fetch; windows are examined strictly in order and a fetch
// failure ends the search.
package search
