// Package tasks implements long-running feed operations: refreshing every
// feed concurrently, bulk stream resolution over a worker pool, and caching
// fetched items for offline listing. Operations emit progress updates via
// channels for non-blocking status reporting to CLI/UI layers.
package tasks
