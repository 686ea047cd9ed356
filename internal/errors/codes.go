package errors

// Error code constants organized by band: parser-origin errors surfaced by
// the error-node check (PRS###), structural errors from the early phases
// (SEM###), type errors (TYP###), ownership errors (OWN###), and
// pre-codegen gate errors (GEN###).
const (
	// PRS001 indicates a parser-produced member error was found in the tree
	PRS001 = "PRS001"

	// PRS002 indicates a parser-produced identifier error was found
	PRS002 = "PRS002"

	// PRS003 indicates a parser-produced invalid expression was found
	PRS003 = "PRS003"

	// SEM001 indicates two or more declarations share a name
	SEM001 = "SEM001"

	// SEM002 indicates a value reference did not resolve
	SEM002 = "SEM002"

	// SEM003 indicates a type reference did not resolve
	SEM003 = "SEM003"

	// SEM004 indicates a type reference matched more than one declaration
	SEM004 = "SEM004"

	// SEM005 indicates a value reference matched more than one declaration
	SEM005 = "SEM005"

	// SEM006 indicates terms left over after expression rewriting
	SEM006 = "SEM006"

	// SEM007 indicates an expression the rewriter could not shape
	SEM007 = "SEM007"

	// SEM008 indicates a function or operator with duplicate parameters
	SEM008 = "SEM008"

	// TYP001 indicates an argument or body type disagrees with a declared type
	TYP001 = "TYP001"

	// TYP002 indicates application of a non-callable value
	TYP002 = "TYP002"

	// TYP003 indicates a type that could not be computed
	TYP003 = "TYP003"

	// TYP004 indicates a function or operator parameter without an ascription
	TYP004 = "TYP004"

	// TYP005 indicates conditional branches with incompatible types
	TYP005 = "TYP005"

	// TYP006 indicates a conditional whose branch types are unknown
	TYP006 = "TYP006"

	// TYP007 indicates a hole whose expected type cannot be inferred
	TYP007 = "TYP007"

	// OWN001 indicates use of a value after its ownership moved
	OWN001 = "OWN001"

	// OWN002 indicates a consuming argument used again later in scope
	OWN002 = "OWN002"

	// OWN003 indicates partial application over a consuming parameter
	OWN003 = "OWN003"

	// OWN004 indicates conditional branches with incompatible ownership
	OWN004 = "OWN004"

	// OWN005 indicates a move out of a borrowed value
	OWN005 = "OWN005"

	// GEN001 indicates an entry point that does not fit the compilation mode
	GEN001 = "GEN001"
)

// Info provides structured information about an error code.
type Info struct {
	Code        string
	Band        string
	Description string
}

// Registry maps error codes to their information.
var Registry = map[string]Info{
	PRS001: {PRS001, "parser", "Member error found"},
	PRS002: {PRS002, "parser", "Identifier error found"},
	PRS003: {PRS003, "parser", "Invalid expression found"},

	SEM001: {SEM001, "structural", "Duplicate name"},
	SEM002: {SEM002, "structural", "Undefined reference"},
	SEM003: {SEM003, "structural", "Undefined type reference"},
	SEM004: {SEM004, "structural", "Ambiguous type reference"},
	SEM005: {SEM005, "structural", "Ambiguous reference"},
	SEM006: {SEM006, "structural", "Dangling terms"},
	SEM007: {SEM007, "structural", "Invalid expression"},
	SEM008: {SEM008, "structural", "Duplicate parameter names"},

	TYP001: {TYP001, "semantic", "Type mismatch"},
	TYP002: {TYP002, "semantic", "Invalid application"},
	TYP003: {TYP003, "semantic", "Unresolvable type"},
	TYP004: {TYP004, "semantic", "Missing parameter type"},
	TYP005: {TYP005, "semantic", "Conditional branch type mismatch"},
	TYP006: {TYP006, "semantic", "Conditional branch type unknown"},
	TYP007: {TYP007, "semantic", "Untyped hole"},

	OWN001: {OWN001, "semantic", "Use after move"},
	OWN002: {OWN002, "semantic", "Consuming parameter not last use"},
	OWN003: {OWN003, "semantic", "Partial application with consuming parameter"},
	OWN004: {OWN004, "semantic", "Conditional ownership mismatch"},
	OWN005: {OWN005, "semantic", "Move of borrowed value"},

	GEN001: {GEN001, "semantic", "Invalid entry point"},
}

// GetInfo returns information about an error code.
func GetInfo(code string) (Info, bool) {
	info, exists := Registry[code]
	return info, exists
}

// IsParserOrigin checks if the code belongs to the parser-origin band.
func IsParserOrigin(code string) bool {
	info, exists := GetInfo(code)
	return exists && info.Band == "parser"
}

// IsStructural checks if the code belongs to the structural band.
func IsStructural(code string) bool {
	info, exists := GetInfo(code)
	return exists && info.Band == "structural"
}
