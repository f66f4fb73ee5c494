// Package reorder keeps a rendered list consistent with drag gestures.
//
// A Collection holds the canonical order of items by stable id. An Engine
// opens one drag session at a time: DragStart snapshots the order, every
// HoverOver moves the dragged item to the hovered item's current index, and
// the gesture resolves by Drop (keep every optimistic move) or Cancel
// (restore the snapshot). No partial state survives resolution.
//
// Standings derives rank labels purely from position.
package reorder
