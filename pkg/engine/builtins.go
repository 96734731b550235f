package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/carve/pkg/csg"
	"github.com/chazu/carve/pkg/editor"
	"github.com/chazu/carve/pkg/kernel"
	"github.com/chazu/carve/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: set-material -> set_material
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpEntityRef wraps a scene.EntityID so it can be passed between builtins.
type sexpEntityRef struct {
	id   scene.EntityID
	name string // human-readable name for error messages
}

func (r *sexpEntityRef) SexpString(ps *zygo.PrintState) string {
	if r.name != "" {
		return fmt.Sprintf("(entity %q %s)", r.name, r.id.Short())
	}
	return fmt.Sprintf("(entity %s)", r.id.Short())
}
func (r *sexpEntityRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an mgl64.Vec3.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A keyword flag given without a value counts
// as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toEntityRef extracts an EntityID from a sexpEntityRef.
func toEntityRef(s zygo.Sexp) (scene.EntityID, error) {
	if ref, ok := s.(*sexpEntityRef); ok {
		return ref.id, nil
	}
	return scene.EntityID{}, fmt.Errorf("expected entity reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toScale accepts a vec3 or a single number for uniform scaling.
func toScale(s zygo.Sexp) (mgl64.Vec3, error) {
	if f, err := toFloat64(s); err == nil {
		return mgl64.Vec3{f, f, f}, nil
	}
	return toVec3(s)
}

// vec3Args reads a vector given either as one vec3 or as three numbers.
func vec3Args(args []zygo.Sexp) (mgl64.Vec3, error) {
	switch len(args) {
	case 1:
		return toVec3(args[0])
	case 3:
		var v mgl64.Vec3
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return v, err
			}
			v[i] = f
		}
		return v, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected a vec3 or three numbers, got %d argument(s)", len(args))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// refArgs collects entity references from args. Lists and arrays of
// references are flattened, so the result of ungroup or selection can be
// passed straight on.
func refArgs(args []zygo.Sexp) ([]scene.EntityID, error) {
	var ids []scene.EntityID
	for i, a := range args {
		if ref, ok := a.(*sexpEntityRef); ok {
			ids = append(ids, ref.id)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: expected entity reference, got %T (%s)", i, a, a.SexpString(nil))
		}
		nested, err := refArgs(items)
		if err != nil {
			return nil, err
		}
		ids = append(ids, nested...)
	}
	return ids, nil
}

// refList returns the ids as a Lisp list of entity references.
func refList(snap scene.Snapshot, ids []scene.EntityID) zygo.Sexp {
	items := make([]zygo.Sexp, len(ids))
	for i, id := range ids {
		ref := &sexpEntityRef{id: id}
		if v := snap.Find(id); v != nil {
			ref.name = v.Name
		}
		items[i] = ref
	}
	return zygo.MakeList(items)
}

// placement reads :at, :rotate and :scale into a local transform.
func placement(pa kwArgs) (scene.Transform, error) {
	t := scene.Identity()
	if v, ok := pa.kw["at"]; ok {
		p, err := toVec3(v)
		if err != nil {
			return t, fmt.Errorf("at: %w", err)
		}
		t.Position = p
	}
	if v, ok := pa.kw["rotate"]; ok {
		r, err := toVec3(v)
		if err != nil {
			return t, fmt.Errorf("rotate: %w", err)
		}
		t.Rotation = r
	}
	if v, ok := pa.kw["scale"]; ok {
		s, err := toScale(v)
		if err != nil {
			return t, fmt.Errorf("scale: %w", err)
		}
		t.Scale = s
	}
	return t, nil
}

// primitiveDims reads the dimensions of a primitive from positional numbers
// first, then from the keywords named by keys. A box also accepts
// :size (vec3 x y z).
func primitiveDims(shape kernel.Shape, pa kwArgs, keys []string) ([]float64, error) {
	if v, ok := pa.kw["size"]; ok && shape == kernel.ShapeBox {
		s, err := toVec3(v)
		if err != nil {
			return nil, fmt.Errorf("size: %w", err)
		}
		return s[:], nil
	}
	if len(pa.positional) > len(keys) {
		return nil, fmt.Errorf("expected at most %d dimension(s), got %d", len(keys), len(pa.positional))
	}
	dims := make([]float64, len(keys))
	for i, key := range keys {
		var (
			v  zygo.Sexp
			ok bool
		)
		if i < len(pa.positional) {
			v, ok = pa.positional[i], true
		} else {
			v, ok = pa.kw[key]
		}
		if !ok {
			return nil, fmt.Errorf("missing :%s", key)
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		dims[i] = f
	}
	return dims, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the scene DSL into a zygomys environment. Every
// builtin goes through the session's editor, so scripts are held to the
// same validation as interactive edits.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *session) {

	// -----------------------------------------------------------------------
	// (box 1 2 3 :at (vec3 0 1 0) :rotate (vec3 0 45 0) :name "base")
	// (box :size (vec3 1 2 3))
	// (cylinder :height 2 :radius 0.5)   (cone 2 0.5)   (sphere 1 :hole true)
	// (torus :major 1 :minor 0.25)
	// -----------------------------------------------------------------------
	env.AddFunction("box", primitive(s, kernel.ShapeBox, "x", "y", "z"))
	env.AddFunction("cylinder", primitive(s, kernel.ShapeCylinder, "height", "radius"))
	env.AddFunction("cone", primitive(s, kernel.ShapeCone, "height", "radius"))
	env.AddFunction("sphere", primitive(s, kernel.ShapeSphere, "radius"))
	env.AddFunction("torus", primitive(s, kernel.ShapeTorus, "major", "minor"))

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := vec3Args(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (entity "base")
	// -----------------------------------------------------------------------
	env.AddFunction("entity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("entity requires a name argument")
		}
		label, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("entity: name: %w", err)
		}
		id, ok := s.ed.Lookup(label)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("entity: no entity named %q", label)
		}
		return &sexpEntityRef{id: id, name: label}, nil
	})

	// -----------------------------------------------------------------------
	// (move a (vec3 1 0 0))   (rotate a 0 90 0)   (scale a 2)
	// -----------------------------------------------------------------------
	env.AddFunction("move", transformEdit(s, s.ed.Move, vec3Args))
	env.AddFunction("rotate", transformEdit(s, s.ed.Rotate, vec3Args))
	env.AddFunction("scale", transformEdit(s, s.ed.Scale, func(args []zygo.Sexp) (mgl64.Vec3, error) {
		if len(args) == 1 {
			return toScale(args[0])
		}
		return vec3Args(args)
	}))

	// -----------------------------------------------------------------------
	// (select a b)  replaces the selection with a, then adds b
	// (deselect)    clears it
	// (selection)   lists the selected entities
	// -----------------------------------------------------------------------
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := refArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: %w", err)
		}
		if len(ids) == 0 {
			return zygo.SexpNull, fmt.Errorf("select requires at least one entity")
		}
		var r editor.Result
		for i, id := range ids {
			if r, err = s.ed.Select(id, i > 0); err != nil {
				return zygo.SexpNull, fmt.Errorf("select: %w", err)
			}
		}
		return refList(r.Snapshot, r.Snapshot.Selection), nil
	})

	env.AddFunction("deselect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		s.ed.ClearSelection()
		return zygo.SexpNull, nil
	})

	env.AddFunction("selection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		snap := s.ed.Snapshot()
		return refList(snap, snap.Selection), nil
	})

	// -----------------------------------------------------------------------
	// (union a b)  (subtract a b c)  (intersect)
	//
	// With no arguments the current selection is used. More than two
	// operands fold left: (subtract a b c) is (subtract (subtract a b) c).
	// -----------------------------------------------------------------------
	env.AddFunction("union", booleanOp(s, csg.OpUnion))
	env.AddFunction("subtract", booleanOp(s, csg.OpSubtract))
	env.AddFunction("intersect", booleanOp(s, csg.OpIntersect))

	// -----------------------------------------------------------------------
	// (group a b)  (ungroup g)  (delete a b)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		ids, err := refArgs(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: %w", err)
		}
		r, err := s.ed.Group(ids)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: %w", err)
		}
		ref := &sexpEntityRef{id: r.IDs[0]}
		if v, ok := pa.kw["name"]; ok {
			if ref.name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
			}
			if _, err := s.ed.Rename(ref.id, ref.name); err != nil {
				return zygo.SexpNull, fmt.Errorf("group: %w", err)
			}
		}
		return ref, nil
	})

	env.AddFunction("ungroup", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var id scene.EntityID
		switch len(args) {
		case 0:
		case 1:
			var err error
			if id, err = toEntityRef(args[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("ungroup: %w", err)
			}
		default:
			return zygo.SexpNull, fmt.Errorf("ungroup takes one group, got %d arguments", len(args))
		}
		r, err := s.ed.Ungroup(id)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ungroup: %w", err)
		}
		return refList(r.Snapshot, r.IDs), nil
	})

	env.AddFunction("delete", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := refArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		before := len(s.ed.Snapshot().Entities)
		r, err := s.ed.Delete(ids)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("delete: %w", err)
		}
		return &zygo.SexpInt{Val: int64(before - len(r.Snapshot.Entities))}, nil
	})

	// -----------------------------------------------------------------------
	// (hole a)  (hole a false)
	// -----------------------------------------------------------------------
	env.AddFunction("hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("hole requires an entity and an optional flag")
		}
		id, err := toEntityRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hole: %w", err)
		}
		flag := true
		if len(args) == 2 {
			if flag, err = toBool(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("hole: %w", err)
			}
		}
		if _, err := s.ed.SetHole(id, flag); err != nil {
			return zygo.SexpNull, fmt.Errorf("hole: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (set-material a :name "steel" :color "#8a8a8a")
	//
	// Registered as "set_material"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("set_material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("set-material requires one entity")
		}
		id, err := toEntityRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-material: %w", err)
		}
		var mat scene.Material
		if v, ok := pa.kw["name"]; ok {
			if mat.Name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-material: name: %w", err)
			}
		}
		if v, ok := pa.kw["color"]; ok {
			if mat.Color, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-material: color: %w", err)
			}
		}
		if mat.Color == "" {
			snap := s.ed.Snapshot()
			if v := snap.Find(id); v != nil && v.Material != nil {
				mat.Color = v.Material.Color
			}
		}
		if _, err := s.ed.SetMaterial(id, mat); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-material: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (snap a b)  or (snap) for the selection
	// -----------------------------------------------------------------------
	env.AddFunction("snap", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := refArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("snap: %w", err)
		}
		if _, err := s.ed.Snap(ids); err != nil {
			return zygo.SexpNull, fmt.Errorf("snap: %w", err)
		}
		return zygo.SexpNull, nil
	})
}

func primitive(s *session, shape kernel.Shape, keys ...string) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		dims, err := primitiveDims(shape, pa, keys)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		t, err := placement(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		var label string
		if v, ok := pa.kw["name"]; ok {
			if label, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", name, err)
			}
		}

		r, err := s.ed.AddPrimitive(shape, label, t, dims...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		id := r.IDs[0]

		if v, ok := pa.kw["hole"]; ok {
			hole, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: hole: %w", name, err)
			}
			if _, err := s.ed.SetHole(id, hole); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
		}
		if v, ok := pa.kw["color"]; ok {
			color, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: color: %w", name, err)
			}
			if _, err := s.ed.SetMaterial(id, scene.Material{Color: color}); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
		}

		if label == "" {
			label = string(shape)
		}
		return &sexpEntityRef{id: id, name: label}, nil
	}
}

func transformEdit(
	s *session,
	apply func(scene.EntityID, mgl64.Vec3) (editor.Result, error),
	read func([]zygo.Sexp) (mgl64.Vec3, error),
) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires an entity and a vector", name)
		}
		id, err := toEntityRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		v, err := read(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		if _, err := apply(id, v); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return args[0], nil
	}
}

func booleanOp(s *session, op csg.Op) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := refArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		if len(ids) == 0 {
			ids = s.ed.Snapshot().Selection
		}
		if len(ids) < 2 {
			// The editor reports the selection error.
			_, err := s.ed.BooleanOp(op, ids)
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}

		acc := ids[0]
		for _, next := range ids[1:] {
			r, err := s.ed.BooleanOp(op, []scene.EntityID{acc, next})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			acc = r.IDs[0]
			if w := r.Warning(); w != nil {
				s.warn(acc, "%v", w)
			}
		}
		return &sexpEntityRef{id: acc, name: op.String()}, nil
	}
}
