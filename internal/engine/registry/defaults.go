package registry

import "arbiter/internal/engine/profile"

// Defaults returns the builtin language table. Compile templates end by
// echoing the sentinel marker so that success never depends on exit
// codes alone; the sh -c bodies contain only registry-controlled paths.
func Defaults() []profile.LanguageSpec {
	return []profile.LanguageSpec{
		{
			ID:         "javascript",
			Name:       "JavaScript (Node.js)",
			Image:      "node:20-alpine",
			SourceFile: "main.js",
			RunCmdTpl:  "node {src}",
			HostTools:  []string{"node"},
		},
		{
			ID:             "python",
			Name:           "Python 3",
			Image:          "python:3.12-alpine",
			SourceFile:     "main.py",
			RunCmdTpl:      "python3 {src}",
			HostTools:      []string{"python3"},
			TimeMultiplier: 2,
		},
		{
			ID:             "cpp",
			Name:           "C++ (g++)",
			Image:          "gcc:13",
			SourceFile:     "main.cpp",
			BinaryFile:     "program",
			CompileEnabled: true,
			CompileCmdTpl:  `sh -c "g++ -O2 -pipe -std=gnu++17 -o {bin} {src} && echo ` + profile.CompileOKMarker + `"`,
			RunCmdTpl:      "{bin}",
			HostTools:      []string{"g++"},
		},
		{
			ID:             "java",
			Name:           "Java 21",
			Image:          "eclipse-temurin:21",
			EntryRule:      profile.EntryJavaPublicClass,
			CompileEnabled: true,
			CompileCmdTpl:  `sh -c "javac {src} && echo ` + profile.CompileOKMarker + `"`,
			RunCmdTpl:      "java -cp {dir} {class}",
			HostTools:      []string{"javac", "java"},
			TimeMultiplier: 1.5,
			// JVM baseline overhead.
			MemoryMultiplier: 2,
		},
		{
			ID:             "csharp",
			Name:           "C# (Mono)",
			Image:          "mono:6",
			SourceFile:     "Main.cs",
			BinaryFile:     "main.exe",
			CompileEnabled: true,
			CompileCmdTpl:  `sh -c "mcs -out:{bin} {src} && echo ` + profile.CompileOKMarker + `"`,
			RunCmdTpl:      "mono {bin}",
			HostTools:      []string{"mcs", "mono"},
			TimeMultiplier: 1.5,
		},
		{
			ID:             "go",
			Name:           "Go",
			Image:          "golang:1.22-alpine",
			SourceFile:     "main.go",
			BinaryFile:     "program",
			CompileEnabled: true,
			CompileCmdTpl:  `sh -c "go build -o {bin} {src} && echo ` + profile.CompileOKMarker + `"`,
			RunCmdTpl:      "{bin}",
			HostTools:      []string{"go"},
			Env:            []string{"GOCACHE=/tmp/gocache", "HOME=/tmp"},
		},
	}
}
