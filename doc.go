// Package divscan counts the elements of an int32 dataset that are divisible
// by a fixed divisor and finds the smallest of them, using a sequential scan,
// a sharded scan merged under a mutex, or a sharded scan merged with atomic
// add and compare-and-swap.
//
// Partitioning is static: Partition splits the dataset into Config.Threads
// contiguous shards and each parallel reduction runs one goroutine per shard,
// joining all of them before it returns.
package divscan
