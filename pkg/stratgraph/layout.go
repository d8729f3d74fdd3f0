package stratgraph

import "math"

// Layout spacing in canvas units.
const (
	columnWidth = 360
	rowGap      = 40
)

// Rect is an axis-aligned box on the canvas.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// AutoArrange lays nodes out in columns by control depth. Nodes without an
// incoming control edge start columns at zero; each control edge moves its
// target one column right of the first node that reached it. Nodes with only
// data connections sit one column left of their first consumer. Within a
// column nodes stack top to bottom in visitation order.
func (g *Graph) AutoArrange() {
	g.mu.Lock()
	defer g.mu.Unlock()

	controlIn := make(map[string]bool)
	controlOut := make(map[string][]string)
	hasControl := make(map[string]bool)
	for _, c := range g.connections {
		if !g.isControl(c) {
			continue
		}
		controlIn[c.Target] = true
		controlOut[c.Source] = append(controlOut[c.Source], c.Target)
		hasControl[c.Source] = true
		hasControl[c.Target] = true
	}

	column := make(map[string]int, len(g.order))
	var visited []string
	bfs := func(root string) {
		column[root] = 0
		visited = append(visited, root)
		queue := []string{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, next := range controlOut[id] {
				if _, seen := column[next]; seen {
					continue
				}
				column[next] = column[id] + 1
				visited = append(visited, next)
				queue = append(queue, next)
			}
		}
	}

	for _, id := range g.order {
		if !controlIn[id] && hasControl[id] {
			bfs(id)
		}
	}
	// Control nodes only reachable through a cycle.
	for _, id := range g.order {
		if _, seen := column[id]; !seen && hasControl[id] {
			bfs(id)
		}
	}
	for _, id := range g.order {
		if _, seen := column[id]; seen {
			continue
		}
		col := 0
		for _, c := range g.connections {
			if c.Source != id {
				continue
			}
			if consumer, ok := column[c.Target]; ok && consumer > 0 {
				col = consumer - 1
			}
			break
		}
		column[id] = col
		visited = append(visited, id)
	}

	nextY := make(map[int]float64)
	for _, id := range visited {
		n := g.nodes[id]
		col := column[id]
		n.Position = Position{X: float64(col * columnWidth), Y: nextY[col]}
		nextY[col] += MustSpec(n.Kind()).Size.Height + rowGap
	}
}

// isControl reports whether c joins two exec ports. Callers hold the lock.
func (g *Graph) isControl(c Connection) bool {
	src, ok := g.nodes[c.Source]
	if !ok {
		return false
	}
	out, ok := src.Output(c.SourceOutput)
	return ok && out.Socket.IsControl()
}

// Bounds returns the box enclosing every node, using each kind's rendered
// size. It reports false for an empty graph.
func (g *Graph) Bounds() (Rect, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(g.order) == 0 {
		return Rect{}, false
	}

	r := Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, id := range g.order {
		n := g.nodes[id]
		size := MustSpec(n.Kind()).Size
		r.MinX = math.Min(r.MinX, n.Position.X)
		r.MinY = math.Min(r.MinY, n.Position.Y)
		r.MaxX = math.Max(r.MaxX, n.Position.X+size.Width)
		r.MaxY = math.Max(r.MaxY, n.Position.Y+size.Height)
	}
	return r, true
}
