package project

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// ImageLoader decodes an image file. imaging.ImageCache satisfies it.
type ImageLoader interface {
	Load(path string) (image.Image, error)
}

// Manifest is the on-disk YAML description of a project.
type Manifest struct {
	Name       string            `yaml:"name"`
	Resolution *Resolution       `yaml:"resolution"`
	Textures   []ManifestTexture `yaml:"textures"`
	Bones      []Bone            `yaml:"bones"`
	Cubes      []ManifestCube    `yaml:"cubes"`
}

// ManifestTexture declares a texture either by image path or by blank size.
type ManifestTexture struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// ManifestCube declares a cube; face UVs are [x1, y1, x2, y2].
type ManifestCube struct {
	ID    string                  `yaml:"id"`
	Name  string                  `yaml:"name"`
	Bone  string                  `yaml:"bone"`
	From  mgl32.Vec3              `yaml:"from"`
	To    mgl32.Vec3              `yaml:"to"`
	Faces map[string]ManifestFace `yaml:"faces"`
}

// ManifestFace maps a face to a texture rectangle.
type ManifestFace struct {
	Texture string `yaml:"texture"`
	UV      []int  `yaml:"uv"`
}

// LoadManifest reads a YAML manifest and builds a Store from it. Texture paths
// are resolved relative to the manifest directory.
func LoadManifest(path string, loader ImageLoader) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m.Build(filepath.Dir(path), loader)
}

// Build converts the manifest into a Store.
func (m *Manifest) Build(baseDir string, loader ImageLoader) (*Store, error) {
	store := NewStore(&State{Name: m.Name})
	if m.Resolution != nil {
		if err := store.SetResolution(m.Resolution.Width, m.Resolution.Height, false); err != nil {
			return nil, err
		}
	}

	for _, mt := range m.Textures {
		t := Texture{ID: mt.ID, Name: mt.Name, Width: mt.Width, Height: mt.Height}
		if mt.Path != "" {
			if loader == nil {
				return nil, fmt.Errorf("texture %q: no image loader for %s", mt.Name, mt.Path)
			}
			p := mt.Path
			if !filepath.IsAbs(p) {
				p = filepath.Join(baseDir, p)
			}
			img, err := loader.Load(p)
			if err != nil {
				return nil, fmt.Errorf("texture %q: %w", mt.Name, err)
			}
			t.Pixels = FromImage(img)
		}
		if _, err := store.AddTexture(t); err != nil {
			return nil, err
		}
	}

	for _, b := range m.Bones {
		if err := store.AddBone(b); err != nil {
			return nil, err
		}
	}

	for _, mc := range m.Cubes {
		c := Cube{ID: mc.ID, Name: mc.Name, Bone: mc.Bone, From: mc.From, To: mc.To, Visible: true}
		if len(mc.Faces) > 0 {
			c.Faces = make(map[FaceName]*Face, len(mc.Faces))
		}
		for rawName, mf := range mc.Faces {
			name, err := ParseFaceName(rawName)
			if err != nil {
				return nil, fmt.Errorf("cube %q: %w", mc.Name, err)
			}
			f := &Face{Texture: mf.Texture}
			if len(mf.UV) > 0 {
				if len(mf.UV) != 4 {
					return nil, fmt.Errorf("cube %q face %s: uv needs 4 values, got %d", mc.Name, name, len(mf.UV))
				}
				f.UV = &Rect{X1: mf.UV[0], Y1: mf.UV[1], X2: mf.UV[2], Y2: mf.UV[3]}
			}
			c.Faces[name] = f
		}
		if _, err := store.AddCube(c); err != nil {
			return nil, err
		}
	}
	return store, nil
}
