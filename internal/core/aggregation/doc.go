// Package aggregation implements stateless vote aggregation rules.
//
// Every function takes the ballots it needs and returns a fresh result; none
// of them touch the tally store. Functions that return winner sets sort them
// so results do not depend on map iteration order.
package aggregation
