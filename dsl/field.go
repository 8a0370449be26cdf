package dsl

import (
	"github.com/reoring/reqshape"
)

// FieldBuilder accumulates the declaration of a single field. Methods return a
// modified copy, so a builder can be shared as a template.
type FieldBuilder struct {
	f reqshape.Field
}

func kind(k reqshape.Kind) FieldBuilder { return FieldBuilder{f: reqshape.Field{Kind: k}} }

func String() FieldBuilder { return kind(reqshape.KindString) }

func Number() FieldBuilder { return kind(reqshape.KindNumber) }

func Int() FieldBuilder { return kind(reqshape.KindInteger) }

func Bool() FieldBuilder { return kind(reqshape.KindBool) }

func Any() FieldBuilder { return kind(reqshape.KindAny) }

// FreeObject declares an object field whose keys are not checked.
func FreeObject() FieldBuilder { return kind(reqshape.KindObject) }

// Object declares a field holding an instance of the named shape.
func Object(shape string) FieldBuilder {
	return FieldBuilder{f: reqshape.Field{Kind: reqshape.KindObject, Ref: shape}}
}

// ArrayOf declares an array whose elements follow elem. An Object(...) element
// without extra rules makes an array of shapes.
func ArrayOf(elem FieldBuilder) FieldBuilder {
	e := elem.f
	if e.Kind == reqshape.KindObject && e.Ref != "" && len(e.Rules) == 0 && !e.Nullable {
		return FieldBuilder{f: reqshape.Field{Kind: reqshape.KindArray, Ref: e.Ref}}
	}
	return FieldBuilder{f: reqshape.Field{Kind: reqshape.KindArray, Elem: &e}}
}

func (b FieldBuilder) with(r reqshape.Rule) FieldBuilder {
	out := b
	out.f.Rules = append(append([]reqshape.Rule{}, b.f.Rules...), r)
	return out
}

func (b FieldBuilder) MinLength(n int) FieldBuilder { return b.with(reqshape.MinLength(n)) }

func (b FieldBuilder) MaxLength(n int) FieldBuilder { return b.with(reqshape.MaxLength(n)) }

func (b FieldBuilder) Pattern(expr string) FieldBuilder { return b.with(reqshape.Pattern(expr)) }

func (b FieldBuilder) Format(name string) FieldBuilder { return b.with(reqshape.Format(name)) }

func (b FieldBuilder) Email() FieldBuilder { return b.Format(reqshape.FormatEmail) }

func (b FieldBuilder) UUID() FieldBuilder { return b.Format(reqshape.FormatUUID) }

func (b FieldBuilder) DateTime() FieldBuilder { return b.Format(reqshape.FormatDateTime) }

func (b FieldBuilder) Date() FieldBuilder { return b.Format(reqshape.FormatDate) }

func (b FieldBuilder) NotEmpty() FieldBuilder { return b.with(reqshape.NotEmpty()) }

func (b FieldBuilder) Min(n float64) FieldBuilder { return b.with(reqshape.Min(n)) }

func (b FieldBuilder) Max(n float64) FieldBuilder { return b.with(reqshape.Max(n)) }

func (b FieldBuilder) OneOf(vals ...any) FieldBuilder { return b.with(reqshape.OneOf(vals...)) }

func (b FieldBuilder) MinItems(n int) FieldBuilder { return b.with(reqshape.MinItems(n)) }

func (b FieldBuilder) MaxItems(n int) FieldBuilder { return b.with(reqshape.MaxItems(n)) }

// Nullable accepts JSON null for this field (or array element).
func (b FieldBuilder) Nullable() FieldBuilder {
	out := b
	out.f.Nullable = true
	return out
}

// Describe attaches documentation exported to JSON Schema.
func (b FieldBuilder) Describe(text string) FieldBuilder {
	out := b
	out.f.Description = text
	return out
}

// Decl returns the field declaration built so far (unnamed).
func (b FieldBuilder) Decl() reqshape.Field { return b.f }
