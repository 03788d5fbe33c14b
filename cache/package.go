/*
Package cache provides an interface to cache items. It should not be of any
concern to the callee where this cache is, simply that the cache exists and will
speed things up.

A Loader sits in front of a slow producer and guarantees that, for a given key,
the producer runs at most once until the key is invalidated.
*/
package cache
