package repl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

const addFuncDeclJSON = `{"type":"FuncDecl","name":"add","params":[` +
	`{"type":"Param","name":"a","type":{"type":"PrimType","name":"i32"}},` +
	`{"type":"Param","name":"b","type":{"type":"PrimType","name":"i32"}}],` +
	`"return":{"type":"PrimType","name":"i32"},` +
	`"body":{"type":"Block","stmts":[{"type":"ReturnStmt","value":` +
	`{"type":"BinaryExpr","op":"+","left":{"type":"Identifier","name":"a"},` +
	`"right":{"type":"Identifier","name":"b"}}}]}}`

// processItem and handleCommand are the REPL's testable core: they never
// touch liner's raw-terminal I/O, so they're exercised directly rather
// than through Start (which always drives its prompt off the real
// terminal regardless of any io.Reader passed to it).

func TestProcessItem_FuncDeclPrintsIR(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.processItem(addFuncDeclJSON, &out)

	// A non-generic function has nothing to mangle, so only the emitted
	// IR is expected — the mangled-name line is only printed when the
	// manifest's mono list is non-empty.
	assert.Contains(t, out.String(), "define i32 @add")
	assert.NotContains(t, out.String(), "mangled:")
}

func TestProcessItem_GenericProgramPrintsMangledName(t *testing.T) {
	full := `{"type":"Program","package":"repl","items":[
		{"type":"FuncDecl","name":"identity","typeParams":["T"],
		 "params":[{"type":"Param","name":"x","type":{"type":"TypeVarType","name":"T"}}],
		 "return":{"type":"TypeVarType","name":"T"},
		 "body":{"type":"Block","stmts":[{"type":"ReturnStmt","value":{"type":"Identifier","name":"x"}}]}},
		{"type":"FuncDecl","name":"useIt","params":[],
		 "return":{"type":"PrimType","name":"i32"},
		 "body":{"type":"Block","stmts":[{"type":"ReturnStmt","value":
		   {"type":"CallExpr","callee":{"type":"Identifier","name":"identity"},
		    "typeArgs":[{"type":"PrimType","name":"i32"}],
		    "args":[{"type":"IntLit","value":1}]}}]}}
	]}`
	r := New()
	var out bytes.Buffer

	r.processItem(full, &out)

	assert.Contains(t, out.String(), "mangled: identity_i32")
}

func TestProcessItem_ReportsDiagnosticsForBrokenInput(t *testing.T) {
	broken := `{"type":"FuncDecl","name":"bad","params":[],` +
		`"return":{"type":"PrimType","name":"i32"},` +
		`"body":{"type":"Block","stmts":[{"type":"ReturnStmt","value":` +
		`{"type":"CallExpr","callee":{"type":"Identifier","name":"missing"},"args":[]}}]}}`
	r := New()
	var out bytes.Buffer

	r.processItem(broken, &out)

	assert.Contains(t, out.String(), "TC003")
}

func TestProcessItem_RejectsInvalidJSON(t *testing.T) {
	r := New()
	var out bytes.Buffer

	r.processItem("not json", &out)

	assert.Contains(t, out.String(), "Error")
}

func TestHandleCommand_Help(t *testing.T) {
	r := New()
	var out bytes.Buffer

	quit := r.handleCommand(":help", &out)

	assert.False(t, quit)
	assert.Contains(t, out.String(), "Commands:")
}

func TestHandleCommand_QuitVariants(t *testing.T) {
	for _, cmd := range []string{":quit", ":q", ":exit"} {
		r := New()
		var out bytes.Buffer

		quit := r.handleCommand(cmd, &out)

		assert.True(t, quit, "command %q should quit", cmd)
		assert.Contains(t, out.String(), "Goodbye!")
	}
}

func TestHandleCommand_HistoryAndClear(t *testing.T) {
	r := New()
	r.history = []string{"one", "two"}
	var out bytes.Buffer

	quit := r.handleCommand(":history", &out)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "one")
	assert.Contains(t, out.String(), "two")

	out.Reset()
	quit = r.handleCommand(":clear", &out)
	assert.False(t, quit)
	assert.Empty(t, r.history)
}

func TestDecodeProgramOrItem_WrapsBareItem(t *testing.T) {
	prog, err := decodeProgramOrItem(addFuncDeclJSON)
	assert.NoError(t, err)
	assert.Len(t, prog.Items, 1)
	assert.Equal(t, "repl", prog.Package)
}

func TestDecodeProgramOrItem_AcceptsFullProgram(t *testing.T) {
	full := `{"type":"Program","package":"main","items":[` + addFuncDeclJSON + `]}`
	prog, err := decodeProgramOrItem(full)
	assert.NoError(t, err)
	assert.Equal(t, "main", prog.Package)
	assert.Len(t, prog.Items, 1)
}
