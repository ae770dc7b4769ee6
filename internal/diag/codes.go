package diag

// Stable error-code registry, one block per compiler phase, matching the
// kind/code pairing in the error-handling design. Codes are never
// renumbered or reused once shipped, so external tooling can key off them
// directly.
const (
	// Type-checking (TC###)

	TCUndefinedVariable    = "TC001"
	TCUndefinedType        = "TC002"
	TCUndefinedFunction    = "TC003"
	TCDuplicateVariable    = "TC004"
	TCDuplicateType        = "TC005"
	TCDuplicateFunction    = "TC006"
	TCTypeMismatch         = "TC007"
	TCArgumentCountMismatch = "TC008"
	TCMethodNotFound       = "TC009"
	TCTypeInferenceError   = "TC010"
	TCInvalidOperation     = "TC011"

	// Borrow checking (BRW###)

	BRWImmutableVariable      = "BRW001"
	BRWUseAfterMove           = "BRW002"
	BRWMoveWhileBorrowed      = "BRW003"
	BRWMultipleMutableBorrows = "BRW004"
	BRWMutableBorrowConflict  = "BRW005"
	BRWTemporaryReference     = "BRW006"

	// Lifetime checking (LFT###)

	LFTLifetimeError = "LFT001"

	// Control-flow analysis (FLW###)

	FLWMissingReturn      = "FLW001"
	FLWNonExhaustiveMatch = "FLW002"

	// Monomorphization (MONO###) — not part of the error-handling design's
	// table (which only enumerates TC/BRW/LFT/FLW/CG); added in the same
	// per-phase-registry style for the one phase that table omits.
	MONOUnresolvedGeneric = "MONO001"
	MONOAmbiguousArgs     = "MONO002"

	// Code generation (CG###)

	CGInvalidType        = "CG001"
	CGUndefined          = "CG002"
	CGTypeError          = "CG003"
	CGUnimplemented      = "CG004"
	CGCompilationFailed  = "CG005"
	CGInternal           = "CG999"
)

// Phase name constants used as Report.Phase values.
const (
	PhaseTypecheck = "typecheck"
	PhaseBorrow    = "borrow"
	PhaseLifetime  = "lifetime"
	PhaseFlow      = "flow"
	PhaseMono      = "mono"
	PhaseCodegen   = "codegen"
)
