package domain

import "time"

// HierarchyEdge is a directed parent→child relationship between two
// accounts. A child appears in at most one edge.
type HierarchyEdge struct {
	ID        string
	ParentID  string
	ChildID   string
	CreatedAt time.Time
}
