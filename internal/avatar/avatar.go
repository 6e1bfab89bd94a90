// Package avatar generates the cartoon avatars shown for participants.
package avatar

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
)

// DataURLPrefix prefixes every generated avatar.
const DataURLPrefix = "data:image/svg+xml;base64,"

var (
	skinTones  = []string{"#D4A574", "#C68642", "#B87333", "#A0522D", "#8B4513", "#6F4E37", "#5C4033", "#4A3728"}
	hairColors = []string{"#000000", "#1C1C1C", "#2C1608", "#3D2314"}
	eyeColors  = []string{"#1C0D07", "#2E1A0F", "#3D2314", "#000000"}
)

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200">` +
	`<rect width="200" height="200" fill="#F5F5F5"/>` +
	`<circle cx="100" cy="110" r="60" fill="%[1]s"/>` +
	`<path d="M35 90 A65 65 0 0 1 165 90 Z" fill="%[2]s"/>` +
	`<circle cx="85" cy="105" r="8" fill="#FFFFFF"/><circle cx="115" cy="105" r="8" fill="#FFFFFF"/>` +
	`<circle cx="85" cy="105" r="5" fill="%[3]s"/><circle cx="115" cy="105" r="5" fill="%[3]s"/>` +
	`<path d="M116 127 A20 20 0 0 1 84 127" fill="none" stroke="#000000" stroke-width="2"/>` +
	`<path d="M100 110 L105 120" stroke="#000000" stroke-width="2"/>` +
	`</svg>`

// Generator builds avatar data URLs from a random palette pick.
type Generator struct {
	intN func(n int) int
}

// Option configures a Generator.
type Option func(*Generator)

// WithIntN overrides the random source. intN must return a value in [0, n).
func WithIntN(intN func(n int) int) Option {
	return func(g *Generator) { g.intN = intN }
}

// New returns a Generator using math/rand/v2 unless overridden.
func New(opts ...Option) *Generator {
	g := &Generator{intN: rand.IntN}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new avatar as an SVG data URL.
func (g *Generator) Generate() string {
	svg := fmt.Sprintf(svgTemplate,
		skinTones[g.intN(len(skinTones))],
		hairColors[g.intN(len(hairColors))],
		eyeColors[g.intN(len(eyeColors))],
	)
	return DataURLPrefix + base64.StdEncoding.EncodeToString([]byte(svg))
}
