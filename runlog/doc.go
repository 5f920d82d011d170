// Package runlog records the configuration and wall-clock span of
// ground-truth runs.
//
// Records go to any number of sinks: a space-separated table that plotting
// scripts read with pandas (sep=' '), an SQLite ledger, and structured logs.
package runlog
