package atlas

import (
	"fmt"
	"sort"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"github.com/ironsheep/texture-atlas-mcp/internal/usage"
)

// LayoutDiff renders the face rectangles before and after a plan as a
// unified diff, one "texture cube:face rect" line per face. Unchanged layouts
// yield "".
func LayoutDiff(before *usage.Usage, plan *Plan) string {
	var a []string
	for _, t := range before.Textures {
		for _, f := range t.Faces {
			a = append(a, layoutLine(t.Key(), f.CubeName, string(f.Face), f.UV.String()))
		}
	}
	b := make([]string, 0, len(plan.Assignments))
	for _, asg := range plan.Assignments {
		b = append(b, layoutLine(asg.TextureID, asg.CubeName, string(asg.Face), asg.UV.String()))
	}
	sort.Strings(a)
	sort.Strings(b)

	header := fmt.Sprintf("layout@%dx%d", plan.Width, plan.Height)
	s, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "layout@current",
		ToFile:   header,
		Context:  1,
	})
	if err != nil {
		return ""
	}
	return s
}

func layoutLine(texture, cube, face, rect string) string {
	return strings.Join([]string{texture, cube + ":" + face, rect}, " ") + "\n"
}
