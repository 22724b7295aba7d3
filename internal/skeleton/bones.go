// Package skeleton assembles a character's node hierarchy from the
// skeleton table and the model objects.
package skeleton

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"mmd-renderer/internal/game"
	"mmd-renderer/internal/mmd"
	"mmd-renderer/internal/player"
	"mmd-renderer/internal/scene"
	"mmd-renderer/internal/texture"
	"mmd-renderer/internal/tim"
	"mmd-renderer/internal/tmd"
)

// Character is a posable model. Bones[i] is the node animated by bone i;
// relations marking the root map to Root itself.
type Character struct {
	Name       string
	Root       *scene.Node
	Bones      []*scene.Node
	Relations  []game.Relation
	Animations []mmd.Animation

	textures []*tim.Atlas
}

// Build creates the node hierarchy. A bone with an object draws that model
// object; a bone without one is an empty group. Parents must precede
// their children.
func Build(rels []game.Relation, model *tmd.Model, cv *scene.Converter) (*Character, error) {
	c := &Character{Root: scene.NewNode("root"), Relations: rels}
	seen := make(map[*tim.Atlas]bool)

	for i, rel := range rels {
		if rel.Object == game.NoObject && rel.Parent == game.NoObject {
			c.Bones = append(c.Bones, c.Root)
			continue
		}
		if int(rel.Parent) >= len(c.Bones) {
			return nil, fmt.Errorf("skeleton: bone %d: parent %d not built yet", i, rel.Parent)
		}

		name := fmt.Sprintf("bone%d", i)
		var n *scene.Node
		if rel.Object != game.NoObject {
			if int(rel.Object) >= len(model.Objects) {
				return nil, fmt.Errorf("skeleton: bone %d: object %d of %d", i, rel.Object, len(model.Objects))
			}
			n = cv.Node(name, &model.Objects[rel.Object])
		} else {
			n = scene.NewNode(name)
		}
		if n.Mesh != nil {
			for _, a := range n.Mesh.Textures() {
				if !seen[a] {
					seen[a] = true
					c.textures = append(c.textures, a)
				}
			}
		}

		c.Bones[rel.Parent].Add(n)
		c.Bones = append(c.Bones, n)
	}
	return c, nil
}

// Load builds the character described by ch from its decoded model file,
// textured with the character's archive image, and decodes its animations.
func Load(ch *game.Character, f *mmd.File) (*Character, error) {
	idx := texture.NewIndex()
	if ch.Texture != nil {
		idx.Add(ch.Texture)
	}
	c, err := Build(ch.Skeleton, f.Model, &scene.Converter{Textures: idx})
	if err != nil {
		return nil, fmt.Errorf("skeleton: build %s: %w", ch.FileName, err)
	}
	c.Name = ch.FileName
	c.Root.Name = ch.FileName

	c.Animations, err = f.Animations.Decode(len(ch.Skeleton))
	if err != nil {
		return nil, fmt.Errorf("skeleton: animations %s: %w", ch.FileName, err)
	}
	return c, nil
}

// Nodes returns the bones as player targets.
func (c *Character) Nodes() []player.Node {
	out := make([]player.Node, len(c.Bones))
	for i, b := range c.Bones {
		out[i] = b
	}
	return out
}

// Textures returns the distinct atlases the character samples.
func (c *Character) Textures() []*tim.Atlas { return c.textures }

// SetupAnimation puts every bone in the initial pose of animation i.
func (c *Character) SetupAnimation(i int) error {
	if i < 0 || i >= len(c.Animations) {
		return fmt.Errorf("skeleton: animation %d of %d", i, len(c.Animations))
	}
	for b, pose := range c.Animations[i].Poses {
		if b >= len(c.Bones) {
			break
		}
		n := c.Bones[b]
		n.SetPosition(pose.PositionVec())
		n.SetScale(pose.ScaleVec())
		n.SetRotation(pose.RotationDegrees())
	}
	return nil
}

// WorldMatrices computes the root-relative transform of each bone.
func (c *Character) WorldMatrices() []mgl32.Mat4 {
	worlds := make([]mgl32.Mat4, len(c.Bones))
	for i, rel := range c.Relations {
		local := c.Bones[i].Matrix()
		if rel.Parent != game.NoObject && int(rel.Parent) < i {
			worlds[i] = worlds[rel.Parent].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}
