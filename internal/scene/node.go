package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"mmd-renderer/internal/mathutil"
)

// Node is a transform in a model hierarchy. Rotation is Euler degrees;
// the local matrix is translate * rotate * scale and is rebuilt lazily.
type Node struct {
	Name string
	Mesh *Mesh

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3

	parent   *Node
	children []*Node

	matrix mgl32.Mat4
	dirty  bool
}

// NewNode returns an identity node.
func NewNode(name string) *Node {
	return &Node{Name: name, scale: mgl32.Vec3{1, 1, 1}, dirty: true}
}

func (n *Node) Position() mgl32.Vec3 { return n.position }
func (n *Node) Rotation() mgl32.Vec3 { return n.rotation }
func (n *Node) Scale() mgl32.Vec3    { return n.scale }

func (n *Node) SetPosition(v mgl32.Vec3) {
	n.position = v
	n.dirty = true
}

func (n *Node) SetRotation(v mgl32.Vec3) {
	n.rotation = v
	n.dirty = true
}

func (n *Node) SetScale(v mgl32.Vec3) {
	n.scale = v
	n.dirty = true
}

// Matrix returns the local transform.
func (n *Node) Matrix() mgl32.Mat4 {
	if n.dirty {
		n.matrix = mathutil.TRS(n.position, mathutil.EulerToQuat(n.rotation), n.scale)
		n.dirty = false
	}
	return n.matrix
}

// World returns the transform from this node's space to the root's.
func (n *Node) World() mgl32.Mat4 {
	m := n.Matrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.Matrix().Mul4(m)
	}
	return m
}

// Add attaches child, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// Walk visits n and its descendants depth first with their world matrices.
func (n *Node) Walk(fn func(node *Node, world mgl32.Mat4)) {
	n.walk(mgl32.Ident4(), fn)
}

func (n *Node) walk(parent mgl32.Mat4, fn func(*Node, mgl32.Mat4)) {
	world := parent.Mul4(n.Matrix())
	fn(n, world)
	for _, c := range n.children {
		c.walk(world, fn)
	}
}
