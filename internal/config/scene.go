package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/discoscene/internal/atmosphere"
	"github.com/ivlev/discoscene/internal/camera"
	"github.com/ivlev/discoscene/internal/carousel"
	"github.com/ivlev/discoscene/internal/orbit"
	"github.com/ivlev/discoscene/internal/scene"
)

// SceneFile is the YAML form of scene.Config. Fields that are absent from the
// file keep their defaults.
type SceneFile struct {
	Camera     camera.Params     `yaml:"camera"`
	Ring       carousel.Params   `yaml:"ring"`
	Cards      []CardFile        `yaml:"cards"`
	Lights     []LightFile       `yaml:"lights"`
	Ball       BallFile          `yaml:"ball"`
	Sway       SwayFile          `yaml:"sway"`
	Atmosphere atmosphere.Config `yaml:"atmosphere"`
	Seed       uint64            `yaml:"seed"`
}

type CardFile struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"`
}

type LightFile struct {
	Name  string       `yaml:"name"`
	Color string       `yaml:"color"`
	Orbit orbit.Params `yaml:"orbit"`
}

type BallFile struct {
	Spin  float64 `yaml:"spin"`
	Scale float64 `yaml:"scale"`
}

type SwayFile struct {
	Speed     float64 `yaml:"speed"`
	Angle     float64 `yaml:"angle"`
	StringTop float64 `yaml:"string_top"`
}

// DefaultScene returns the scene of the live site.
func DefaultScene() scene.Config {
	return scene.DefaultConfig()
}

// LoadScene reads a scene tuning file on top of the defaults.
func LoadScene(path string) (scene.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scene.Config{}, fmt.Errorf("failed to read scene file: %w", err)
	}
	return ParseScene(data)
}

// ParseScene decodes a scene tuning document on top of the defaults.
func ParseScene(data []byte) (scene.Config, error) {
	def := DefaultScene()
	sf := toFile(def)
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return scene.Config{}, fmt.Errorf("failed to parse scene file: %w", err)
	}
	return fromFile(sf, def)
}

// MarshalScene renders cfg as a scene tuning document.
func MarshalScene(cfg scene.Config) ([]byte, error) {
	return yaml.Marshal(toFile(cfg))
}

// WriteScene saves cfg as a scene tuning file that LoadScene reads back.
func WriteScene(cfg scene.Config, path string) error {
	data, err := MarshalScene(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write scene file: %w", err)
	}
	return nil
}

func toFile(cfg scene.Config) SceneFile {
	sf := SceneFile{
		Camera:     cfg.Camera,
		Ring:       cfg.Ring,
		Ball:       BallFile{Spin: cfg.BallSpin, Scale: cfg.BallScale},
		Sway:       SwayFile{Speed: cfg.SwaySpeed, Angle: cfg.SwayAngle, StringTop: cfg.StringTop},
		Atmosphere: cfg.Atmosphere,
		Seed:       cfg.Seed,
	}
	for _, c := range cfg.Cards {
		sf.Cards = append(sf.Cards, CardFile{Label: c.Label, Color: FormatHexColor(c.Color)})
	}
	for _, l := range cfg.Lights {
		sf.Lights = append(sf.Lights, LightFile{Name: l.Name, Color: FormatHexColor(l.Color), Orbit: l.Orbit})
	}
	return sf
}

func fromFile(sf SceneFile, def scene.Config) (scene.Config, error) {
	cfg := scene.Config{
		Camera:     sf.Camera,
		Ring:       sf.Ring,
		BallSpin:   sf.Ball.Spin,
		BallScale:  sf.Ball.Scale,
		SwaySpeed:  sf.Sway.Speed,
		SwayAngle:  sf.Sway.Angle,
		StringTop:  sf.Sway.StringTop,
		Atmosphere: sf.Atmosphere,
		Seed:       sf.Seed,
	}
	// Layers are not part of the file format.
	cfg.Atmosphere.Layers = def.Atmosphere.Layers

	for i, c := range sf.Cards {
		col, err := ParseHexColor(c.Color)
		if err != nil {
			return scene.Config{}, fmt.Errorf("card %d (%s): %w", i, c.Label, err)
		}
		cfg.Cards = append(cfg.Cards, carousel.Entry{Label: c.Label, Color: col})
	}
	for i, l := range sf.Lights {
		col, err := ParseHexColor(l.Color)
		if err != nil {
			return scene.Config{}, fmt.Errorf("light %d (%s): %w", i, l.Name, err)
		}
		cfg.Lights = append(cfg.Lights, scene.LightSpec{Name: l.Name, Color: col, Orbit: l.Orbit})
	}
	return cfg, nil
}

// ParseHexColor accepts "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func FormatHexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
