package reqshape

import "log/slog"

// Kind is the declared type of a field or of a bare target.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindInteger
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "any"
	}
}

// ParseKind maps a declarative type name ("string", "int", "bool", ...) to a Kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "string":
		return KindString, true
	case "number", "float":
		return KindNumber, true
	case "integer", "int":
		return KindInteger, true
	case "boolean", "bool":
		return KindBool, true
	case "object":
		return KindObject, true
	case "array":
		return KindArray, true
	case "any", "":
		return KindAny, true
	}
	return KindAny, false
}

// DefaultMaxDepth bounds shape descent when Config.MaxDepth is zero.
const DefaultMaxDepth = 32

// Config bundles the validation switches.
type Config struct {
	// Whitelist strips fields not declared by the shape from the accepted
	// instance. When false, undeclared fields pass through unchanged.
	Whitelist bool
	// ForbidNonWhitelisted reports every undeclared field found in the raw
	// input as an unknown_key violation.
	ForbidNonWhitelisted bool
	// ForbidUnknownValues rejects a root value that is not an object with a
	// single unknown_value violation, skipping all field checks.
	ForbidUnknownValues bool
	// MaxDepth limits nested shape descent (0 means DefaultMaxDepth).
	MaxDepth int
	// Logger receives a debug record for every rejection. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns the recommended switches for HTTP request bodies.
func DefaultConfig() Config {
	return Config{
		Whitelist:           true,
		ForbidUnknownValues: true,
		MaxDepth:            DefaultMaxDepth,
	}
}

// StrictConfig is DefaultConfig with undeclared fields reported as violations.
func StrictConfig() Config {
	c := DefaultConfig()
	c.ForbidNonWhitelisted = true
	return c
}

func (c Config) maxDepth() int {
	if c.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}
