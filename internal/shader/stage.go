// Package shader models HLSL shader sources: the pipeline stages they target,
// the entry points annotated in their text, and the build variants and
// compile jobs derived from them.
package shader

import "fmt"

// Stage identifies the pipeline stage an entry point is compiled for.
type Stage string

// Supported stages. The value doubles as the annotation tag and the profile
// prefix passed to the compiler.
const (
	StageVertex   Stage = "vs"
	StageGeometry Stage = "gs"
	StagePixel    Stage = "ps"
	StageCompute  Stage = "cs"
)

// DefaultShaderModel is the profile suffix used when none is configured.
const DefaultShaderModel = "5_0"

// stageInfo holds the output extensions for a stage.
type stageInfo struct {
	objExt string
	asmExt string
}

var stageTable = map[Stage]stageInfo{
	StageVertex:   {objExt: "vso", asmExt: "vsa"},
	StageGeometry: {objExt: "gso", asmExt: "gsa"},
	StagePixel:    {objExt: "pso", asmExt: "psa"},
	StageCompute:  {objExt: "cso", asmExt: "csa"},
}

// Stages returns every supported stage in build order.
func Stages() []Stage {
	return []Stage{StageVertex, StageGeometry, StagePixel, StageCompute}
}

// ParseStage maps an annotation tag to a Stage. It reports false for tags
// outside the supported set.
func ParseStage(tag string) (Stage, bool) {
	s := Stage(tag)
	if _, ok := stageTable[s]; !ok {
		return "", false
	}
	return s, true
}

// Profile returns the compiler target profile for the stage, e.g. "ps_5_0".
func (s Stage) Profile(model string) string {
	if model == "" {
		model = DefaultShaderModel
	}
	return fmt.Sprintf("%s_%s", s, model)
}

// ObjectExt returns the extension of compiled object files for the stage.
func (s Stage) ObjectExt() string {
	return stageTable[s].objExt
}

// AsmExt returns the extension of disassembly listings for the stage.
func (s Stage) AsmExt() string {
	return stageTable[s].asmExt
}

// String returns the annotation tag of the stage.
func (s Stage) String() string {
	return string(s)
}
