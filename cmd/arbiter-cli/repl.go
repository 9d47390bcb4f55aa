package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"arbiter/internal/engine"
	"arbiter/internal/engine/result"
)

type repl struct {
	svc *engine.Service
	rl  *readline.Instance
}

func newREPL(svc *engine.Service, mode string) (*repl, error) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("judge"),
		readline.PcItem("run"),
		readline.PcItem("langs"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fmt.Sprintf("arbiter(%s)> ", mode),
		HistoryFile:     filepath.Join(os.TempDir(), ".arbiter_history"),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline failed: %w", err)
	}
	return &repl{svc: svc, rl: rl}, nil
}

func (r *repl) Close() {
	_ = r.rl.Close()
}

// Loop reads and dispatches commands until exit or EOF. Command errors
// are printed and do not end the session.
func (r *repl) Loop() error {
	for {
		line, err := r.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args, err := shlex.Split(strings.TrimSpace(line))
		if err != nil {
			r.printf("parse error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "exit", "quit":
			return nil
		case "help":
			r.printHelp()
		case "langs":
			r.cmdLangs()
		case "run":
			r.cmdRun(args[1:])
		case "judge":
			r.cmdJudge(args[1:])
		default:
			r.printf("unknown command: %s (try help)\n", args[0])
		}
	}
}

func (r *repl) printHelp() {
	r.printf(`commands:
  judge <language> <source-file> <cases-file>   judge against test cases (YAML or JSON)
  run   <language> <source-file> [stdin-file]   compile and run once
  langs                                         list supported languages
  exit                                          quit
`)
}

func (r *repl) cmdLangs() {
	for _, lang := range r.svc.Languages(context.Background()) {
		r.printf("  %-12s %s (%s)\n", lang.ID, lang.Name, lang.Image)
	}
}

func (r *repl) cmdRun(args []string) {
	if len(args) < 2 {
		r.printf("usage: run <language> <source-file> [stdin-file]\n")
		return
	}
	code, err := os.ReadFile(args[1])
	if err != nil {
		r.printf("read source failed: %v\n", err)
		return
	}
	stdin := ""
	if len(args) >= 3 {
		data, err := os.ReadFile(args[2])
		if err != nil {
			r.printf("read stdin file failed: %v\n", err)
			return
		}
		stdin = string(data)
	}

	res, err := r.svc.RunOnce(context.Background(), string(code), args[0], stdin)
	if err != nil {
		r.printf("error: %v\n", err)
		return
	}
	r.printJSON(res)
}

func (r *repl) cmdJudge(args []string) {
	if len(args) < 3 {
		r.printf("usage: judge <language> <source-file> <cases-file>\n")
		return
	}
	code, err := os.ReadFile(args[1])
	if err != nil {
		r.printf("read source failed: %v\n", err)
		return
	}
	cases, err := loadTestCases(args[2])
	if err != nil {
		r.printf("load test cases failed: %v\n", err)
		return
	}

	verdict, err := r.svc.Execute(context.Background(), string(code), args[0], cases, engine.Options{})
	if err != nil {
		r.printf("error: %v\n", err)
		return
	}
	r.printJSON(verdict)
}

// loadTestCases reads a test case list. YAML is the native format;
// JSON files parse through the same path since YAML is a superset.
func loadTestCases(path string) ([]result.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []result.TestCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases in %s", path)
	}
	return cases, nil
}

func (r *repl) printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		r.printf("encode result failed: %v\n", err)
		return
	}
	r.printf("%s\n", data)
}

func (r *repl) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.rl.Stdout(), format, args...)
}
