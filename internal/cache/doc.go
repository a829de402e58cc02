// Package cache provides the two storage tiers behind the style cache: a
// bounded in-memory LRU of registered handles (volatile) and persistent
// stores of serialized normalized styles (durable).
package cache
