// Package topk keeps the k best (distance, index) pairs seen during a scan.
//
// A Selector is owned by exactly one goroutine. The engine creates one per
// query, offers every candidate of every base block to it, and calls Finalize
// once the last block has been scanned.
package topk
