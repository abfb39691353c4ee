package project

// NodeKind tags the variant held by a Node.
type NodeKind int

// Node kinds.
const (
	NodeBone NodeKind = iota
	NodeCube
)

// String returns "bone" or "cube".
func (k NodeKind) String() string {
	switch k {
	case NodeBone:
		return "bone"
	case NodeCube:
		return "cube"
	}
	return "unknown"
}

// Node is an outliner entry: exactly one of Bone or Cube is set, as told by Kind.
type Node struct {
	Kind NodeKind
	Bone *Bone
	Cube *Cube
}

// Name returns the display name of the node.
func (n Node) Name() string {
	switch n.Kind {
	case NodeBone:
		return n.Bone.Name
	case NodeCube:
		return n.Cube.Name
	}
	return ""
}

// Parent returns the name of the owning bone ("" for root bones).
func (n Node) Parent() string {
	switch n.Kind {
	case NodeBone:
		return n.Bone.Parent
	case NodeCube:
		return n.Cube.Bone
	}
	return ""
}

// Nodes walks the outliner depth-first: every bone in declaration order,
// followed by the cubes it owns, then its child bones.
func (s *State) Nodes() []Node {
	children := make(map[string][]*Bone)
	var roots []*Bone
	for _, b := range s.Bones {
		if b.Parent == "" || s.Bone(b.Parent) == nil {
			roots = append(roots, b)
			continue
		}
		children[b.Parent] = append(children[b.Parent], b)
	}
	cubes := make(map[string][]*Cube)
	for _, c := range s.Cubes {
		cubes[c.Bone] = append(cubes[c.Bone], c)
	}

	out := make([]Node, 0, len(s.Bones)+len(s.Cubes))
	seen := make(map[string]bool)
	var walk func(b *Bone)
	walk = func(b *Bone) {
		if seen[b.Name] {
			return
		}
		seen[b.Name] = true
		out = append(out, Node{Kind: NodeBone, Bone: b})
		for _, c := range cubes[b.Name] {
			out = append(out, Node{Kind: NodeCube, Cube: c})
		}
		for _, child := range children[b.Name] {
			walk(child)
		}
	}
	for _, b := range roots {
		walk(b)
	}
	return out
}
