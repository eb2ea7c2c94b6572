// Package metric provides prometheus instrumentation for the coding and
// reconciliation layers: codec lookup hits and misses, reconciled and
// unfolded observation counts, reconciliation duration, and heap-guard trips.
package metric
