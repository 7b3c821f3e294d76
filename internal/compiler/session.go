// Package compiler orchestrates one Rio compilation session.
//
// A Session owns an inheritance registry that persists across the units it
// compiles. Each Compile call parses the source, applies declarations to the
// registry, emits HRIR cells, tracks membrane crossings, validates the
// result, and returns a self-contained Result.
//
// Compile is total: every failure is reported through Result.Err and the
// session returns to Idle. Declarations applied before a failure stay in
// the registry; the failed unit produces no HRIR or membrane artifacts.
package compiler

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Moop-Lang/Moop-wasm/internal/emit"
	"github.com/Moop-Lang/Moop-wasm/internal/ir"
	"github.com/Moop-Lang/Moop-wasm/internal/membrane"
	"github.com/Moop-Lang/Moop-wasm/internal/path"
	"github.com/Moop-Lang/Moop-wasm/internal/registry"
	"github.com/Moop-Lang/Moop-wasm/internal/surface"
)

// State is the session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateCompiling
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCompiling:
		return "compiling"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Recorder receives one observation per finished unit.
// *metrics.Collector implements it.
type Recorder interface {
	ObserveUnit(success bool, rTerms, dTerms, crossings int, elapsed time.Duration)
}

// Session compiles units against a shared registry.
// A Session is not safe for concurrent use; separate sessions share nothing.
type Session struct {
	id       string
	state    State
	registry *registry.Registry
	clock    Sequencer
	logger   zerolog.Logger
	recorder Recorder
	now      func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithIDGenerator sets the generator for the session id.
func WithIDGenerator(g IDGenerator) SessionOption {
	return func(s *Session) { s.id = g.Generate() }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

// WithClock sets the unit sequence clock, e.g. to resume numbering.
func WithClock(c Sequencer) SessionOption {
	return func(s *Session) { s.clock = c }
}

// WithNow replaces the wall clock used for phase timing.
func WithNow(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates an idle session with an empty registry.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		state:    StateIdle,
		registry: registry.New(),
		clock:    NewClock(),
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = UUIDv7Generator{}.Generate()
	}
	s.logger = s.logger.With().Str("session", s.id).Logger()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Graph returns the inheritance relations accumulated so far.
func (s *Session) Graph() []string { return s.registry.Snapshot() }

// Prototypes returns a snapshot of every prototype in creation order.
func (s *Session) Prototypes() []registry.Info {
	names := s.registry.Names()
	out := make([]registry.Info, 0, len(names))
	for _, n := range names {
		info, _ := s.registry.Get(n)
		out = append(out, info)
	}
	return out
}

// Resolve resolves a canonical path against the session registry.
func (s *Session) Resolve(text string) (registry.Target, error) {
	p, err := path.Parse(text)
	if err != nil {
		return registry.Target{}, err
	}
	return s.registry.Resolve(p)
}

// Linearize returns the lookup order for a prototype.
func (s *Session) Linearize(name string) []string {
	return s.registry.Linearize(name)
}

// Close moves the session to Closed. Later compiles fail.
func (s *Session) Close() {
	s.state = StateClosed
	s.logger.Debug().Msg("session closed")
}

// unit carries the in-progress state of one compilation.
type unit struct {
	opts     Options
	stmts    []surface.Statement
	program  *ir.Program
	tracker  *membrane.Tracker
	emitter  *emit.Emitter
	warnings []string
}

// Compile compiles source. It always returns a Result.
func (s *Session) Compile(source string, opts Options) *Result {
	res := s.compile(source, opts)
	res.Source = source
	return res
}

func (s *Session) compile(source string, opts Options) *Result {
	switch s.state {
	case StateClosed:
		return s.reject(opts, "session is closed")
	case StateCompiling:
		return s.reject(opts, "compile already in progress")
	}

	s.state = StateCompiling
	defer func() {
		if s.state == StateCompiling {
			s.state = StateIdle
		}
	}()

	seq := s.clock.Next()
	log := s.logger.With().Int64("seq", seq).Logger()
	start := s.now()

	u, err := s.run(source, opts, log)
	compileTime := s.now().Sub(start)
	if err != nil {
		return s.fail(seq, opts, u, err, compileTime, log)
	}

	stats := Stats{
		CanonicalPaths:    s.registry.PathCount(),
		InheritanceEdges:  s.registry.EdgeCount(),
		MembraneCrossings: u.tracker.Len(),
		Statements:        len(u.stmts),
		CompilationTime:   compileTime,
	}
	stats.RTermOps, stats.DTermOps = u.program.Counts()

	vstart := s.now()
	verrs := validateUnit(u.program, u.tracker.Log(), stats)
	stats.ValidationTime = s.now().Sub(vstart)
	if len(verrs) > 0 {
		return s.fail(seq, opts, u, errors.Join(verrs...), compileTime, log)
	}

	res, err := s.assemble(seq, u, stats)
	if err != nil {
		return s.fail(seq, opts, u, err, compileTime, log)
	}

	for _, w := range res.Warnings {
		log.Warn().Msg(w)
	}
	log.Info().
		Str("unit", res.UnitID).
		Int("cells", u.program.Len()).
		Int("crossings", stats.MembraneCrossings).
		Dur("elapsed", compileTime).
		Msg("compiled unit")
	s.observe(true, stats)
	return res
}

// run parses source and applies each statement in processing order.
// The returned unit is non-nil whenever parsing succeeded.
func (s *Session) run(source string, opts Options, log zerolog.Logger) (*unit, error) {
	file, err := surface.Parse(source)
	if err != nil {
		return nil, err
	}

	u := &unit{
		opts:    opts,
		stmts:   file.Statements,
		program: ir.NewProgram(),
		tracker: membrane.NewTracker(),
	}
	if opts.AutoHoist {
		u.stmts = file.Hoisted()
	}

	observers := []emit.Observer{u.tracker}
	if opts.DebugMode {
		observers = append(observers, cellLogger{log})
	}
	u.emitter = emit.New(s.registry, u.program, emit.Options{
		Strict:            opts.StrictMode,
		ReversibleDefault: opts.ReversibleDefault,
	}, observers...)

	for _, stmt := range u.stmts {
		if err := s.apply(u, stmt); err != nil {
			return u, err
		}
	}
	u.warnings = u.emitter.Warnings()
	return u, nil
}

func (s *Session) apply(u *unit, stmt surface.Statement) error {
	switch stmt.Kind {
	case surface.StmtInherit:
		if _, err := s.registry.DeclareEdge(stmt.Child, stmt.Parent); err != nil {
			return &StatementError{Line: stmt.Line, Statement: stmt.String(), Err: err}
		}
	case surface.StmtDefine:
		p, err := path.Parse(stmt.Path)
		if err == nil {
			_, err = s.registry.Define(p)
		}
		if err != nil {
			return &StatementError{Line: stmt.Line, Statement: stmt.String(), Err: err}
		}
	case surface.StmtOperation:
		_, err := u.emitter.Emit(emit.Operation{
			Target:    stmt.Target,
			Opcode:    stmt.Selector,
			Args:      stmt.Args,
			Tag:       stmt.Tag,
			Line:      stmt.Line,
			Statement: stmt.String(),
		})
		return err
	}
	return nil
}

// assemble serializes a successful unit.
func (s *Session) assemble(seq int64, u *unit, stats Stats) (*Result, error) {
	crossings := u.tracker.Log()

	hrir, err := ir.MarshalProgram(u.program, u.opts.DebugMode)
	if err != nil {
		return nil, err
	}
	mlog, err := membrane.MarshalLog(crossings, u.opts.DebugMode)
	if err != nil {
		return nil, err
	}
	programHash, err := ir.ProgramHash(u.program)
	if err != nil {
		return nil, err
	}
	membraneHash, err := membrane.Hash(crossings)
	if err != nil {
		return nil, err
	}
	unitID, err := ir.UnitID(s.id, seq, programHash)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Success:              true,
		SessionID:            s.id,
		Seq:                  seq,
		UnitID:               unitID,
		CanonicalCode:        surface.Render(u.stmts),
		HRIR:                 string(hrir),
		MembraneLog:          string(mlog),
		InheritanceRelations: s.registry.Snapshot(),
		ReversibleIR:         u.program.Listing(),
		Program:              u.program,
		Crossings:            crossings,
		ProgramHash:          programHash,
		MembraneHash:         membraneHash,
		Stats:                stats,
		Warnings:             nonNilStrings(u.warnings),
		Options:              u.opts,
	}
	if u.opts.JSONOutput {
		if res.JSON, err = buildDocument(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// fail builds the failed result for err. Registry state from earlier
// statements is kept and reported.
func (s *Session) fail(seq int64, opts Options, u *unit, err error, elapsed time.Duration, log zerolog.Logger) *Result {
	info := Describe(err)

	stats := Stats{
		CanonicalPaths:   s.registry.PathCount(),
		InheritanceEdges: s.registry.EdgeCount(),
		CompilationTime:  elapsed,
	}
	var warnings []string
	if u != nil {
		stats.Statements = len(u.stmts)
		if u.emitter != nil {
			warnings = u.emitter.Warnings()
		}
	}

	res := &Result{
		Success:              false,
		SessionID:            s.id,
		Seq:                  seq,
		InheritanceRelations: s.registry.Snapshot(),
		Crossings:            []membrane.Crossing{},
		Stats:                stats,
		Warnings:             nonNilStrings(warnings),
		Err:                  info,
		Options:              opts,
	}
	if opts.JSONOutput {
		if doc, derr := buildDocument(res); derr == nil {
			res.JSON = doc
		}
	}

	log.Warn().
		Str("code", info.Code).
		Str("kind", info.Kind).
		Int("line", info.Line).
		Msg(info.Message)
	s.observe(false, stats)
	return res
}

// reject answers a compile request the session cannot start.
func (s *Session) reject(opts Options, msg string) *Result {
	res := &Result{
		SessionID:            s.id,
		InheritanceRelations: s.registry.Snapshot(),
		Crossings:            []membrane.Crossing{},
		Warnings:             []string{},
		Err:                  Describe(&SessionError{State: s.state, Message: msg}),
		Options:              opts,
	}
	if opts.JSONOutput {
		if doc, err := buildDocument(res); err == nil {
			res.JSON = doc
		}
	}
	s.logger.Warn().Str("state", s.state.String()).Msg(msg)
	return res
}

func (s *Session) observe(success bool, stats Stats) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveUnit(success, stats.RTermOps, stats.DTermOps, stats.MembraneCrossings, stats.CompilationTime)
}

// cellLogger logs every emitted cell at debug level.
type cellLogger struct {
	log zerolog.Logger
}

func (c cellLogger) Observe(cell ir.Cell) {
	c.log.Debug().
		Uint32("cell", cell.ID).
		Str("opcode", cell.Opcode).
		Strs("args", cell.Args).
		Str("term", cell.Term()).
		Str("tag", cell.Tag).
		Msg("emit")
}
