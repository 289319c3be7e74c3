package scene

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrEmptyScene is returned for scene files with no YAML document at all.
// A document with an empty node list is a valid scene.
var ErrEmptyScene = errors.New("scene: empty document")

// Node is one authored object: its name, raw component payloads keyed by
// kind, and its children.
type Node struct {
	Name       string               `yaml:"name"`
	Components map[string]yaml.Node `yaml:"components"`
	Children   []Node               `yaml:"children"`
}

// Scene is a parsed scene file.
type Scene struct {
	Name  string `yaml:"scene"`
	Nodes []Node `yaml:"nodes"`
}

// Len returns the number of nodes in the scene, children included.
func (s *Scene) Len() int {
	n := 0
	var walk func([]Node)
	walk = func(nodes []Node) {
		for i := range nodes {
			n++
			walk(nodes[i].Children)
		}
	}
	walk(s.Nodes)
	return n
}

func Parse(data []byte) (*Scene, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("scene: unmarshal: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, ErrEmptyScene
	}
	var sc Scene
	if err := doc.Decode(&sc); err != nil {
		return nil, fmt.Errorf("scene: decode: %w", err)
	}
	return &sc, nil
}

// Loader lets an asset.Server load scene files.
type Loader struct{}

func (Loader) Extensions() []string { return []string{".yaml", ".yml", ".scene"} }

func (Loader) Load(path string, data []byte) (any, error) {
	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}
