// Package engine evaluates carve scene scripts. It wraps zygomys in a
// sandboxed environment whose builtins drive an editor.Editor, so a script
// builds a scene with exactly the operations an interactive user has.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/carve/pkg/editor"
	"github.com/chazu/carve/pkg/logging"
	"github.com/chazu/carve/pkg/scene"
)

// Fatal evaluation failures.
var (
	ErrTimeout    = errors.New("evaluation timed out")
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a rejected scene operation in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a non-fatal finding about a successfully built scene:
// a boolean that dropped sliver polygons, or a validation warning.
type EvalWarning struct {
	Message  string
	EntityID scene.EntityID
}

func (w EvalWarning) String() string {
	if w.EntityID.IsZero() {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.EntityID.Short(), w.Message)
}

// EvalResult is the scene a script produced.
type EvalResult struct {
	Snapshot scene.Snapshot
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use; each
// call to Evaluate creates a fresh sandbox and a fresh editor for
// determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout    time.Duration
	editorOpts []editor.Option
	base       *slog.Logger
	log        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the hard limit for one evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithEditorOptions configures the editor created for every evaluation.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(e *Engine) { e.editorOpts = append(e.editorOpts, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.base = l }
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logging.Component(e.base, "engine")
	return e
}

// Evaluate runs a scene script and returns the resulting snapshot.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*EvalResult, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	res, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	if err != nil {
		e.log.Error("Evaluate fatal error", "generation", gen, "error", err)
	}
	return res, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*EvalResult, []EvalError, error) {
	s := &session{ed: editor.New(append([]editor.Option{editor.WithLogger(e.base)}, e.editorOpts...)...)}

	if strings.TrimSpace(source) == "" {
		return s.finish(), nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return s.finish(), nil, nil
}

// session is the state one evaluation accumulates.
type session struct {
	ed       *editor.Editor
	warnings []EvalWarning
}

func (s *session) warn(id scene.EntityID, format string, args ...any) {
	s.warnings = append(s.warnings, EvalWarning{EntityID: id, Message: fmt.Sprintf(format, args...)})
}

func (s *session) finish() *EvalResult {
	for _, v := range s.ed.Validate() {
		s.warn(v.EntityID, "%s", v.Message)
	}
	return &EvalResult{Snapshot: s.ed.Snapshot(), Warnings: s.warnings}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?is)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
