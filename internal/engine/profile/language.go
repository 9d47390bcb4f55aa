// Package profile defines language specifications used by the engine.
package profile

import "regexp"

// CompileOKMarker is the sentinel a compile command writes to stdout on
// success. Exit codes alone are not trusted because toolchain wrapper
// scripts may swallow them.
const CompileOKMarker = "__ARBITER_COMPILE_OK__"

// EntryRule selects how the source filename and entry point are derived.
type EntryRule string

const (
	// EntryStatic uses SourceFile verbatim.
	EntryStatic EntryRule = "static"
	// EntryJavaPublicClass scans the source for a public class and
	// names the file after it, defaulting to Main.
	EntryJavaPublicClass EntryRule = "java-public-class"
)

// LanguageSpec defines how to materialize, compile and run a language.
type LanguageSpec struct {
	ID         string    `yaml:"id"`
	Name       string    `yaml:"name"`
	Image      string    `yaml:"image"`
	SourceFile string    `yaml:"sourceFile"`
	BinaryFile string    `yaml:"binaryFile"`
	EntryRule  EntryRule `yaml:"entryRule"`

	// CompileEnabled distinguishes compiled from interpreted languages.
	// CompileCmdTpl must be set when it is true.
	CompileEnabled bool   `yaml:"compileEnabled"`
	CompileCmdTpl  string `yaml:"compileCmd"`
	RunCmdTpl      string `yaml:"runCmd"`

	// HostTools are the binaries the direct-host engine needs on PATH.
	HostTools []string `yaml:"hostTools"`

	Env []string `yaml:"env"`

	TimeMultiplier   float64 `yaml:"timeMultiplier"`
	MemoryMultiplier float64 `yaml:"memoryMultiplier"`
}

// SourceInfo is the resolved filename and entry point for one submission.
type SourceInfo struct {
	FileName string
	// EntryPoint is the {class} placeholder value, meaningful for
	// languages that run a named type rather than a file.
	EntryPoint string
}

var publicClassRe = regexp.MustCompile(`public\s+(?:final\s+|abstract\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)`)

// ResolveSource derives the source filename for a submission. For the
// java rule the file must match the public class name; submissions
// without one fall back to Main.
func ResolveSource(lang LanguageSpec, code string) SourceInfo {
	switch lang.EntryRule {
	case EntryJavaPublicClass:
		entry := "Main"
		if m := publicClassRe.FindStringSubmatch(code); m != nil {
			entry = m[1]
		}
		return SourceInfo{FileName: entry + ".java", EntryPoint: entry}
	default:
		return SourceInfo{FileName: lang.SourceFile, EntryPoint: lang.SourceFile}
	}
}

// ScaleWallTime applies the language time multiplier to a millisecond
// budget. Zero or negative multipliers leave the value unchanged.
func ScaleWallTime(ms int64, lang LanguageSpec) int64 {
	return scale(ms, lang.TimeMultiplier)
}

// ScaleMemory applies the language memory multiplier to a MB ceiling.
func ScaleMemory(mb int64, lang LanguageSpec) int64 {
	return scale(mb, lang.MemoryMultiplier)
}

func scale(value int64, multiplier float64) int64 {
	if value <= 0 || multiplier <= 0 {
		return value
	}
	scaled := float64(value) * multiplier
	out := int64(scaled)
	if float64(out) < scaled {
		out++
	}
	return out
}
