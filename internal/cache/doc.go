// Package cache keeps fetched sample audio so that switching back to a
// language does not download its audio again. It has an in-memory LRU
// level (L1) and a zstd-compressed disk level (L2).
package cache
