// Package scene holds the object graph of an editing session: an arena of
// solids and groups addressed by stable ids, their local transforms, the
// ownership of every entity by either the top-level list or one group, and
// the active selection. Every mutating operation validates its input first
// and then applies all of its changes, so a failed call leaves the graph
// untouched.
package scene
