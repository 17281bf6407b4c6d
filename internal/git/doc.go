// Package git looks up the revision of the repository a source tree lives in,
// so build reports can say which commit produced a destination tree.
package git
