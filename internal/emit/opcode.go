package emit

// Opcode is the closed set of operations the emitter knows how to classify.
// Anything else maps to OpUnknown.
type Opcode int

const (
	OpUnknown Opcode = iota

	// Arithmetic
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide

	// Comparison
	OpEqual
	OpLess
	OpGreater

	// Control
	OpJump
	OpJumpIf

	// Memory
	OpStore
	OpLoad

	// Construction and lookup
	OpNew
	OpClone
	OpLookup
	OpGet
	OpSet
	OpLogLocal

	// Effects
	OpPrint
	OpRead
	OpOutput
	OpInput
	OpWrite
	OpDelete
	OpSend
	OpFork
	OpSpawn
	OpKill
	OpExit

	opcodeCount
)

// Term is the reversibility class of an opcode.
type Term int

const (
	// TermUnknown is returned for OpUnknown; the caller picks the default.
	TermUnknown Term = iota
	TermR
	TermD
)

func (t Term) String() string {
	switch t {
	case TermR:
		return "R"
	case TermD:
		return "D"
	default:
		return "?"
	}
}

type opcodeInfo struct {
	name    string
	term    Term
	inverse Opcode
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpUnknown:  {"", TermUnknown, OpUnknown},
	OpAdd:      {"add", TermR, OpSubtract},
	OpSubtract: {"subtract", TermR, OpAdd},
	OpMultiply: {"multiply", TermR, OpDivide},
	OpDivide:   {"divide", TermR, OpMultiply},
	OpEqual:    {"equal", TermR, OpUnknown},
	OpLess:     {"less", TermR, OpUnknown},
	OpGreater:  {"greater", TermR, OpUnknown},
	OpJump:     {"jump", TermR, OpUnknown},
	OpJumpIf:   {"jump_if", TermR, OpUnknown},
	OpStore:    {"store", TermR, OpLoad},
	OpLoad:     {"load", TermR, OpStore},
	OpNew:      {"new", TermR, OpUnknown},
	OpClone:    {"clone", TermR, OpUnknown},
	OpLookup:   {"lookup", TermR, OpUnknown},
	OpGet:      {"get", TermR, OpUnknown},
	OpSet:      {"set", TermR, OpUnknown},
	OpLogLocal: {"log_local", TermR, OpUnknown},
	OpPrint:    {"print", TermD, OpUnknown},
	OpRead:     {"read", TermD, OpUnknown},
	OpOutput:   {"output", TermD, OpUnknown},
	OpInput:    {"input", TermD, OpUnknown},
	OpWrite:    {"write", TermD, OpUnknown},
	OpDelete:   {"delete", TermD, OpUnknown},
	OpSend:     {"send", TermD, OpUnknown},
	OpFork:     {"fork", TermD, OpUnknown},
	OpSpawn:    {"spawn", TermD, OpUnknown},
	OpKill:     {"kill", TermD, OpUnknown},
	OpExit:     {"exit", TermD, OpUnknown},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for op := OpUnknown + 1; op < opcodeCount; op++ {
		m[opcodeTable[op].name] = op
	}
	return m
}()

// effectTargets are receivers whose operations always leave the reversible
// domain, whatever the opcode.
var effectTargets = map[string]bool{
	"io":      true,
	"file":    true,
	"network": true,
	"system":  true,
}

// Lookup maps an opcode name to its Opcode, or OpUnknown.
func Lookup(name string) Opcode {
	return opcodeByName[name]
}

// String returns the opcode name, or "unknown".
func (o Opcode) String() string {
	if o <= OpUnknown || o >= opcodeCount {
		return "unknown"
	}
	return opcodeTable[o].name
}

// Known reports whether o is in the table.
func (o Opcode) Known() bool {
	return o > OpUnknown && o < opcodeCount
}

// Term returns the static reversibility class of o.
func (o Opcode) Term() Term {
	if !o.Known() {
		return TermUnknown
	}
	return opcodeTable[o].term
}

// Inverse returns the opcode that undoes o, or OpUnknown.
func (o Opcode) Inverse() Opcode {
	if !o.Known() {
		return OpUnknown
	}
	return opcodeTable[o].inverse
}

// Opcodes returns every known opcode in table order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount-1)
	for op := OpUnknown + 1; op < opcodeCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// IsEffectTarget reports whether target names an effectful receiver.
func IsEffectTarget(target string) bool {
	return effectTargets[target]
}
