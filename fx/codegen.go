package fx

import "github.com/gogpu/reshadefx/lexer"

// Loop flow values for LeaveBlockAndBranch.
const (
	FlowNone     uint32 = 0
	FlowBreak    uint32 = 1
	FlowContinue uint32 = 2
)

// Control flags accepted by EmitIf, EmitLoop and EmitSwitch.
const (
	ControlFlatten     uint32 = 1 << 0 // [flatten] or [unroll]
	ControlDontFlatten uint32 = 1 << 1 // [branch] or [loop]
)

// Codegen is the SSA code generation back end the parser drives. A parser
// calls the Define methods for declarations, the Emit methods for values and
// the block methods for control flow, then WriteResult once at the end.
//
// Implementations may assume every call is well typed. Ill-typed input is a
// bug in the caller and is allowed to panic.
type Codegen interface {
	// WriteResult fills m with the generated code and every descriptor.
	WriteResult(m *Module)

	DefineStruct(loc lexer.Location, info *StructInfo) ID
	DefineTexture(loc lexer.Location, info *TextureInfo) ID
	DefineSampler(loc lexer.Location, info *SamplerInfo) ID
	DefineUniform(loc lexer.Location, info *UniformInfo) ID
	// DefineVariable declares a variable; init is 0 for none.
	DefineVariable(loc lexer.Location, t Type, name string, global bool, init ID) ID
	// DefineFunction starts a function and assigns an id to every
	// parameter. Code emitted afterwards belongs to this function.
	DefineFunction(loc lexer.Location, info *FunctionInfo) ID
	DefineTechnique(info TechniqueInfo)
	DefineEntryPoint(fn *FunctionInfo, isPixelShader bool)

	// EmitLoad resolves the access chain of exp and returns its value.
	// forceNew requests a fresh id even when the chain is a plain lvalue.
	EmitLoad(exp *Expression, forceNew bool) ID
	EmitStore(exp *Expression, value ID)
	EmitConstant(t Type, data Constant) ID

	EmitUnaryOp(loc lexer.Location, op lexer.TokenKind, t Type, value ID) ID
	EmitBinaryOp(loc lexer.Location, op lexer.TokenKind, resultType, t Type, lhs, rhs ID) ID
	EmitTernaryOp(loc lexer.Location, op lexer.TokenKind, t Type, cond, trueValue, falseValue ID) ID
	EmitCall(loc lexer.Location, fn ID, resultType Type, args []Expression) ID
	EmitCallIntrinsic(loc lexer.Location, intrinsic Intrinsic, resultType Type, args []Expression) ID
	EmitConstruct(loc lexer.Location, t Type, args []Expression) ID

	EmitIf(loc lexer.Location, condValue, condBlock, trueBlock, falseBlock ID, flags uint32)
	EmitPhi(loc lexer.Location, condValue, condBlock, trueValue, trueBlock, falseValue, falseBlock ID, t Type) ID
	EmitLoop(loc lexer.Location, condValue, prevBlock, headerBlock, condBlock, loopBlock, continueBlock ID, flags uint32)
	EmitSwitch(loc lexer.Location, selector, selectorBlock, defaultLabel ID, caseLiteralAndLabels []ID, flags uint32)

	// IsInBlock reports whether code is currently added to a basic block.
	IsInBlock() bool
	// IsInFunction reports whether code is currently added to a function.
	IsInFunction() bool

	CreateBlock() ID
	// SetBlock makes id current without starting a new block and returns
	// the previous one.
	SetBlock(id ID) ID
	EnterBlock(id ID)
	LeaveBlockAndKill() ID
	LeaveBlockAndReturn(value ID) ID
	LeaveBlockAndSwitch(value, defaultTarget ID) ID
	LeaveBlockAndBranch(target ID, loopFlow uint32) ID
	LeaveBlockAndBranchConditional(cond, trueTarget, falseTarget ID) ID
	LeaveFunction()

	FindStruct(id ID) *StructInfo
	FindTexture(id ID) *TextureInfo
	FindFunction(id ID) *FunctionInfo
}
