// Package csg implements constructive solid geometry on polygon soups using
// binary space partitioning. Solids are immutable values: every boolean
// operation builds disposable BSP trees from its inputs and returns a new
// Solid. Vector math uses the sdfx v3 vector type so the engine shares its
// geometric vocabulary with the sdfx primitive backend.
package csg
