// Package scene is the renderable scene graph: groups, meshes, lights and
// instanced pools arranged in a tree of local transforms.
package scene

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/physview/pkg/math"
)

// Kind tells what a node draws.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindReflector
	KindLight
	KindInstanced
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindReflector:
		return "reflector"
	case KindLight:
		return "light"
	case KindInstanced:
		return "instanced"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Transform is a node's pose relative to its parent.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// IdentityTransform is the neutral pose.
func IdentityTransform() Transform {
	return Transform{Rotation: math.QuatIdentity(), Scale: math.One}
}

// Matrix returns the local transform matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Position, t.Rotation, t.Scale)
}

// Node is one element of the scene graph.
type Node struct {
	Name      string
	Kind      Kind
	Transform Transform
	Visible   bool

	// BodyID is the physics body a node belongs to, -1 if none.
	BodyID int

	CastShadow    bool
	ReceiveShadow bool
	// HasCustomMesh marks body groups holding a mesh geom.
	HasCustomMesh bool

	Geometry  *Geometry
	Material  *Material
	Light     *Light
	Instances *Instances
	Reflector *ReflectorOptions

	parent   *Node
	children []*Node
}

func newNode(name string, kind Kind) *Node {
	return &Node{
		Name:      name,
		Kind:      kind,
		Transform: IdentityTransform(),
		Visible:   true,
		BodyID:    -1,
	}
}

// NewGroup returns an empty group.
func NewGroup(name string) *Node {
	return newNode(name, KindGroup)
}

// NewMesh returns a node drawing geometry with material.
func NewMesh(geometry *Geometry, material *Material) *Node {
	n := newNode("", KindMesh)
	n.Geometry = geometry
	n.Material = material
	return n
}

// NewReflector returns a mirror surface drawing geometry.
func NewReflector(geometry *Geometry, material *Material, opts ReflectorOptions) *Node {
	n := newNode("", KindReflector)
	n.Geometry = geometry
	n.Material = material
	n.Reflector = &opts
	return n
}

// NewLightNode returns a node carrying light.
func NewLightNode(light *Light) *Node {
	n := newNode("", KindLight)
	n.Light = light
	return n
}

// NewInstanced returns a pool drawing geometry up to capacity times.
func NewInstanced(geometry *Geometry, material *Material, capacity int) *Node {
	n := newNode("", KindInstanced)
	n.Geometry = geometry
	n.Material = material
	n.Instances = NewInstances(capacity)
	return n
}

// Parent returns the node's parent, nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches child to n, detaching it from its previous parent.
func (n *Node) Add(child *Node) {
	if child.parent == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n and reports whether it was attached.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Find returns the first node named name in depth-first order.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's subtree.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.children {
		child.walk(fn, depth+1)
	}
}

// Count returns the number of nodes of kind k in the subtree.
func (n *Node) Count(k Kind) int {
	count := 0
	n.Walk(func(node *Node, _ int) bool {
		if node.Kind == k {
			count++
		}
		return true
	})
	return count
}

// WorldMatrix composes the transforms from the root down to n.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.Transform.Matrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.Transform.Matrix().Mul(m)
	}
	return m
}

// Dump writes an indented outline of the subtree.
func (n *Node) Dump(w io.Writer) error {
	var err error
	n.Walk(func(node *Node, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), node.describe())
		return true
	})
	return err
}

func (n *Node) describe() string {
	var b strings.Builder
	b.WriteString(n.Kind.String())
	if n.Name != "" {
		fmt.Fprintf(&b, " %q", n.Name)
	}
	if n.BodyID >= 0 {
		fmt.Fprintf(&b, " body=%d", n.BodyID)
	}
	if n.Geometry != nil {
		fmt.Fprintf(&b, " geometry=%s(%d verts)", n.Geometry.Shape, n.Geometry.VertexCount())
	}
	if n.Light != nil {
		fmt.Fprintf(&b, " light=%s", n.Light.Type)
	}
	if n.Instances != nil {
		fmt.Fprintf(&b, " instances=%d/%d", n.Instances.Count, n.Instances.Capacity())
	}
	if n.HasCustomMesh {
		b.WriteString(" custom-mesh")
	}
	return b.String()
}
