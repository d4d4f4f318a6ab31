// Package node implements the long-lived actor orchestrating the core. The
// node serializes transport events, approved membership events and control
// signals through a single background loop, keeps its section knowledge
// consistent, and supports pausing its accumulated state to a snapshot that a
// later process can resume without network re-bootstrap.
package node
