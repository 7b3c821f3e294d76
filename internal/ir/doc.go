// Package ir defines the homoiconic reversible intermediate representation
// (HRIR) produced by the Rio compiler.
//
// A program is an ordered sequence of cells. Each cell carries an opcode,
// its argument tokens, and a reversibility flag: R-term cells can be undone,
// D-term cells cross the membrane into effectful territory and cannot.
//
// This package contains types and serialization only. Other internal
// packages import ir; ir imports nothing internal.
//
// Key constraints:
//   - Cell order is semantic order and survives every serialization
//   - Cells are immutable once appended to a Program
//   - Content hashes use RFC 8785 canonical JSON with domain separation
//   - All JSON tags use snake_case
package ir
