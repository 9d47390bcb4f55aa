package profile_test

import (
	"testing"

	"arbiter/internal/engine/profile"
	appErr "arbiter/pkg/errors"
)

func TestBuildCommandPlaceholders(t *testing.T) {
	lang := profile.LanguageSpec{ID: "cpp", BinaryFile: "program"}
	src := profile.SourceInfo{FileName: "main.cpp"}
	args, err := profile.BuildCommand("g++ -O2 -o {bin} {src}", lang, src, "/box")
	if err != nil {
		t.Fatalf("build command: %v", err)
	}
	want := []string{"g++", "-O2", "-o", "/box/program", "/box/main.cpp"}
	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %v", len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: expected %s, got %s", i, want[i], args[i])
		}
	}
}

func TestBuildCommandClassAndDir(t *testing.T) {
	lang := profile.LanguageSpec{ID: "java"}
	src := profile.SourceInfo{FileName: "Solution.java", EntryPoint: "Solution"}
	args, err := profile.BuildCommand("java -cp {dir} {class}", lang, src, "/work/sub")
	if err != nil {
		t.Fatalf("build command: %v", err)
	}
	if args[2] != "/work/sub" || args[3] != "Solution" {
		t.Fatalf("unexpected expansion: %v", args)
	}
}

func TestBuildCommandQuotedShell(t *testing.T) {
	lang := profile.LanguageSpec{ID: "cpp", BinaryFile: "program"}
	src := profile.SourceInfo{FileName: "main.cpp"}
	args, err := profile.BuildCommand(`sh -c "g++ -o {bin} {src} && echo ok"`, lang, src, "/box")
	if err != nil {
		t.Fatalf("build command: %v", err)
	}
	if len(args) != 3 || args[0] != "sh" || args[1] != "-c" {
		t.Fatalf("expected sh -c vector, got %v", args)
	}
	if args[2] != "g++ -o /box/program /box/main.cpp && echo ok" {
		t.Fatalf("unexpected shell body: %s", args[2])
	}
}

func TestBuildCommandEmptyTemplate(t *testing.T) {
	_, err := profile.BuildCommand("   ", profile.LanguageSpec{}, profile.SourceInfo{}, "/box")
	if err == nil {
		t.Fatalf("expected error for empty template")
	}
	if appErr.GetCode(err) != appErr.InvalidParams {
		t.Fatalf("expected invalid params code")
	}
}

func TestBuildCommandUnbalancedQuote(t *testing.T) {
	_, err := profile.BuildCommand(`sh -c "unterminated`, profile.LanguageSpec{}, profile.SourceInfo{}, "/box")
	if err == nil {
		t.Fatalf("expected parse error")
	}
}
