package profile

import (
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	appErr "arbiter/pkg/errors"
)

// BuildCommand expands a command template into an argument vector.
// Placeholders: {src} source path, {bin} binary path, {class} entry
// point, {dir} working directory. baseDir is the engine-visible path of
// the scratch directory (the mount target for container engines, the
// host path for the direct-host engine). Substituted values come from
// the registry and the entry-point scanner, never raw user input, so
// expansion cannot smuggle shell metacharacters into the vector.
func BuildCommand(tpl string, lang LanguageSpec, src SourceInfo, baseDir string) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command template is required")
	}
	expanded := tpl
	expanded = strings.ReplaceAll(expanded, "{src}", filepath.Join(baseDir, src.FileName))
	expanded = strings.ReplaceAll(expanded, "{bin}", filepath.Join(baseDir, lang.BinaryFile))
	expanded = strings.ReplaceAll(expanded, "{class}", src.EntryPoint)
	expanded = strings.ReplaceAll(expanded, "{dir}", baseDir)

	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse command template failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command is empty after expansion")
	}
	return fields, nil
}
