package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/volume/pkg/sdfx"
	"github.com/chazu/volume/pkg/volume"
	"github.com/chazu/volume/pkg/volume/heap"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: vinsert-anyways -> vinsert_anyways
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

// sexpIndex wraps a world position.
type sexpIndex struct {
	pos volume.Pos
}

func (p *sexpIndex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(ivec3 %d %d %d)", p.pos[0], p.pos[1], p.pos[2])
}
func (p *sexpIndex) Type() *zygo.RegisteredType { return nil }

// sexpBBox wraps a volume.BoundingBox.
type sexpBBox struct {
	bb volume.BoundingBox
}

func (b *sexpBBox) SexpString(ps *zygo.PrintState) string {
	lo, hi := b.bb.Min(), b.bb.Max()
	return fmt.Sprintf("(bbox (ivec3 %d %d %d) (ivec3 %d %d %d))", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}
func (b *sexpBBox) Type() *zygo.RegisteredType { return nil }

// sexpVolume wraps a volume of integers so it can be returned from
// `volume` and consumed by the accessors.
type sexpVolume struct {
	v    volume.Volume[int64]
	name string // set once the volume is bound with defvolume
}

func (v *sexpVolume) SexpString(ps *zygo.PrintState) string {
	if v.name != "" {
		return fmt.Sprintf("(volume %q)", v.name)
	}
	return fmt.Sprintf("(volume %s)", v.v.BoundingBox())
}
func (v *sexpVolume) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps an sdf.SDF3.
type sexpSolid struct {
	s sdf.SDF3
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	bb := s.s.BoundingBox()
	return fmt.Sprintf("(solid %v %v)", bb.Min, bb.Max)
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

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

// toInt64 extracts an integer from a SexpInt. Floats are rejected so that
// cell values and coordinates are never silently truncated.
func toInt64(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toPos extracts a position from an ivec3 or a three element list or array
// of integers.
func toPos(s zygo.Sexp) (volume.Pos, error) {
	if p, ok := s.(*sexpIndex); ok {
		return p.pos, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return volume.Pos{}, fmt.Errorf("expected ivec3: %w", err)
	}
	if len(items) != 3 {
		return volume.Pos{}, fmt.Errorf("expected 3 coordinates, got %d", len(items))
	}
	var p volume.Pos
	for i, item := range items {
		c, err := toInt64(item)
		if err != nil {
			return volume.Pos{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		p[i] = c
	}
	return p, nil
}

// toBBox extracts a bounding box from a sexpBBox.
func toBBox(s zygo.Sexp) (volume.BoundingBox, error) {
	if b, ok := s.(*sexpBBox); ok {
		return b.bb, nil
	}
	return volume.BoundingBox{}, fmt.Errorf("expected bbox, got %T (%s)", s, s.SexpString(nil))
}

// toVolume extracts a volume from a sexpVolume.
func toVolume(s zygo.Sexp) (volume.Volume[int64], error) {
	if v, ok := s.(*sexpVolume); ok {
		return v.v, nil
	}
	return nil, fmt.Errorf("expected volume, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts an SDF from a sexpSolid.
func toSolid(s zygo.Sexp) (sdf.SDF3, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
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

// optionalInt64 returns the keyword value name as an integer, or def when
// the keyword is absent.
func optionalInt64(pa kwArgs, name string, def int64) (int64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	return toInt64(v)
}

// optionalFloat64 is like optionalInt64 for numbers.
func optionalFloat64(pa kwArgs, name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	return toFloat64(v)
}

func boolSexp(b bool) zygo.Sexp {
	return &zygo.SexpBool{Val: b}
}

func intSexp(n int64) zygo.Sexp {
	return &zygo.SexpInt{Val: n}
}

// allocVolume allocates a heap volume after checking MaxVolumeCells.
func allocVolume(bb volume.BoundingBox, fill int64) (*heap.Volume[int64], error) {
	if n := bb.Capacity(); n > MaxVolumeCells {
		return nil, fmt.Errorf("%s holds %d cells, limit is %d", bb, n, MaxVolumeCells)
	}
	return heap.New(fill, bb), nil
}

// fixedArgs checks that a builtin received exactly n positional arguments.
func fixedArgs(name string, args []zygo.Sexp, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s requires exactly %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the volume builtins into a zygomys environment.
// Named volumes are bound into ws during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, ws *Workspace) {
	registerIndexBuiltins(env)
	registerVolumeBuiltins(env, ws)
	registerSolidBuiltins(env)
}

func registerIndexBuiltins(env *zygo.Zlisp) {
	// -----------------------------------------------------------------------
	// (ivec3 1 -2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("ivec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("ivec3", args, 3); err != nil {
			return zygo.SexpNull, err
		}
		p, err := toPos(&zygo.SexpArray{Val: args})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ivec3: %w", err)
		}
		return &sexpIndex{pos: p}, nil
	})

	// -----------------------------------------------------------------------
	// (bbox (ivec3 0 0 0) (ivec3 6 6 6))
	// -----------------------------------------------------------------------
	env.AddFunction("bbox", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("bbox", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		c1, err := toPos(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bbox: first corner: %w", err)
		}
		c2, err := toPos(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bbox: second corner: %w", err)
		}
		bb, err := volume.NewBoundingBox(c1, c2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bbox: %w", err)
		}
		return &sexpBBox{bb: bb}, nil
	})

	// -----------------------------------------------------------------------
	// (capacity b) where b is a bbox or a volume
	// -----------------------------------------------------------------------
	env.AddFunction("capacity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("capacity", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		var bb volume.BoundingBox
		switch a := args[0].(type) {
		case *sexpBBox:
			bb = a.bb
		case *sexpVolume:
			bb = a.v.BoundingBox()
		default:
			return zygo.SexpNull, fmt.Errorf("capacity: expected bbox or volume, got %T", args[0])
		}
		return intSexp(int64(min(bb.Capacity(), math.MaxInt64))), nil
	})
}

func registerVolumeBuiltins(env *zygo.Zlisp, ws *Workspace) {
	// -----------------------------------------------------------------------
	// (volume :min (ivec3 0 0 0) :max (ivec3 6 6 6) :fill 10)
	// (volume :bounds b :fill 10)
	// -----------------------------------------------------------------------
	env.AddFunction("volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var bb volume.BoundingBox
		if v, ok := pa.kw["bounds"]; ok {
			b, err := toBBox(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: bounds: %w", err)
			}
			bb = b
		} else {
			lo, okLo := pa.kw["min"]
			hi, okHi := pa.kw["max"]
			if !okLo || !okHi {
				return zygo.SexpNull, fmt.Errorf("volume requires :bounds or both :min and :max")
			}
			c1, err := toPos(lo)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: min: %w", err)
			}
			c2, err := toPos(hi)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: max: %w", err)
			}
			bb, err = volume.NewBoundingBox(c1, c2)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("volume: %w", err)
			}
		}

		fill, err := optionalInt64(pa, "fill", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: fill: %w", err)
		}
		v, err := allocVolume(bb, fill)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("volume: %w", err)
		}
		return &sexpVolume{v: v}, nil
	})

	// -----------------------------------------------------------------------
	// (defvolume "name" (volume ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defvolume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("defvolume requires a name and a body expression")
		}
		volName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defvolume: name: %w", err)
		}
		v, err := toVolume(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defvolume: %w", err)
		}
		ws.Define(volName, v)
		return &sexpVolume{v: v, name: volName}, nil
	})

	// -----------------------------------------------------------------------
	// (defsolid "name" (sphere 3)) meshes a solid without voxelizing it
	// -----------------------------------------------------------------------
	env.AddFunction("defsolid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("defsolid", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		solidName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: name: %w", err)
		}
		s, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: %w", err)
		}
		ws.DefineSolid(solidName, s)
		return args[1], nil
	})

	// -----------------------------------------------------------------------
	// (vref "name")
	// -----------------------------------------------------------------------
	env.AddFunction("vref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("vref", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		volName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vref: name: %w", err)
		}
		v := ws.Lookup(volName)
		if v == nil {
			return zygo.SexpNull, fmt.Errorf("vref: no volume named %q", volName)
		}
		return &sexpVolume{v: v, name: volName}, nil
	})

	// -----------------------------------------------------------------------
	// (vget v (ivec3 3 3 3)) returns nil when the position is absent
	// -----------------------------------------------------------------------
	env.AddFunction("vget", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, p, err := volumeAndPos("vget", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		item, ok := volume.Get(v, p)
		if !ok {
			return zygo.SexpNull, nil
		}
		return intSexp(item), nil
	})

	// -----------------------------------------------------------------------
	// (vset v (ivec3 3 3 3) 50) returns whether the position was present
	// -----------------------------------------------------------------------
	env.AddFunction("vset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, p, err := volumeAndPos("vset", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		item, err := toInt64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vset: value: %w", err)
		}
		return boolSexp(volume.Set(v, p, item)), nil
	})

	// -----------------------------------------------------------------------
	// (vswap v (ivec3 3 3 3) 50) returns the previous value, or nil
	// -----------------------------------------------------------------------
	env.AddFunction("vswap", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, p, err := volumeAndPos("vswap", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		item, err := toInt64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vswap: value: %w", err)
		}
		prev, ok := volume.Swap(v, p, item)
		if !ok {
			return zygo.SexpNull, nil
		}
		return intSexp(prev), nil
	})

	// -----------------------------------------------------------------------
	// (vcontains v (ivec3 3 3 3))
	// -----------------------------------------------------------------------
	env.AddFunction("vcontains", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, p, err := volumeAndPos("vcontains", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return boolSexp(volume.Contains(v, p)), nil
	})

	// -----------------------------------------------------------------------
	// (vinsert dst (ivec3 4 4 4) src) fails if src escapes dst
	// (vinsert-anyways dst (ivec3 4 4 4) src) copies what fits
	// -----------------------------------------------------------------------
	env.AddFunction("vinsert", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		dst, at, src, err := insertArgs("vinsert", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := volume.Insert(dst, at, src); err != nil {
			return zygo.SexpNull, fmt.Errorf("vinsert: %w", err)
		}
		return args[0], nil
	})

	env.AddFunction("vinsert_anyways", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		dst, at, src, err := insertArgs("vinsert-anyways", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		volume.InsertAnyways(dst, at, src)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (vfill v 7)
	// -----------------------------------------------------------------------
	env.AddFunction("vfill", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("vfill", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVolume(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vfill: %w", err)
		}
		item, err := toInt64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vfill: value: %w", err)
		}
		volume.Fill(v, item)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (subvolume v (bbox ...)) returns a view restricted to the box
	// -----------------------------------------------------------------------
	env.AddFunction("subvolume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("subvolume", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVolume(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subvolume: %w", err)
		}
		bb, err := toBBox(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subvolume: %w", err)
		}
		sub, err := volume.NewSubvolume(v, bb)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("subvolume: %w", err)
		}
		return &sexpVolume{v: sub}, nil
	})

	// -----------------------------------------------------------------------
	// (vbounds v)
	// -----------------------------------------------------------------------
	env.AddFunction("vbounds", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("vbounds", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVolume(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vbounds: %w", err)
		}
		return &sexpBBox{bb: v.BoundingBox()}, nil
	})

	// -----------------------------------------------------------------------
	// (vsum v) and (vcount v 1)
	// -----------------------------------------------------------------------
	env.AddFunction("vsum", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("vsum", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVolume(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vsum: %w", err)
		}
		var sum int64
		for item := range volume.Values(v) {
			sum += item
		}
		return intSexp(sum), nil
	})

	env.AddFunction("vcount", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("vcount", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		v, err := toVolume(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vcount: %w", err)
		}
		want, err := toInt64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vcount: value: %w", err)
		}
		var n int64
		for item := range volume.Values(v) {
			if item == want {
				n++
			}
		}
		return intSexp(n), nil
	})
}

// volumeAndPos extracts the leading volume and position arguments shared by
// the element accessors.
func volumeAndPos(fn string, args []zygo.Sexp, n int) (volume.Volume[int64], volume.Pos, error) {
	if err := fixedArgs(fn, args, n); err != nil {
		return nil, volume.Pos{}, err
	}
	v, err := toVolume(args[0])
	if err != nil {
		return nil, volume.Pos{}, fmt.Errorf("%s: %w", fn, err)
	}
	p, err := toPos(args[1])
	if err != nil {
		return nil, volume.Pos{}, fmt.Errorf("%s: index: %w", fn, err)
	}
	return v, p, nil
}

func insertArgs(fn string, args []zygo.Sexp) (dst volume.Volume[int64], at volume.Pos, src volume.Volume[int64], err error) {
	if err = fixedArgs(fn, args, 3); err != nil {
		return
	}
	if dst, err = toVolume(args[0]); err != nil {
		err = fmt.Errorf("%s: destination: %w", fn, err)
		return
	}
	if at, err = toPos(args[1]); err != nil {
		err = fmt.Errorf("%s: offset: %w", fn, err)
		return
	}
	if src, err = toVolume(args[2]); err != nil {
		err = fmt.Errorf("%s: source: %w", fn, err)
		return
	}
	// Copy a source that aliases the destination so cells are read before
	// they are overwritten.
	if sameStorage(dst, src) {
		src = heap.FromVolume(src)
	}
	return
}

// sameStorage reports whether a and b are views over the same heap volume.
func sameStorage(a, b volume.Volume[int64]) bool {
	ha, ok := storage(a).(*heap.Volume[int64])
	if !ok {
		return false
	}
	hb, ok := storage(b).(*heap.Volume[int64])
	return ok && ha == hb
}

// storage unwraps subvolume views down to the volume that owns the cells.
func storage(v volume.Volume[int64]) volume.Volume[int64] {
	for {
		sub, ok := v.(*volume.Subvolume[int64])
		if !ok {
			return v
		}
		v = sub.Inner()
	}
}

func registerSolidBuiltins(env *zygo.Zlisp) {
	// -----------------------------------------------------------------------
	// (sphere 3)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("sphere", args, 1); err != nil {
			return zygo.SexpNull, err
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		s, err := sdf.Sphere3D(r)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return &sexpSolid{s: s}, nil
	})

	// -----------------------------------------------------------------------
	// (box 4 4 4) centered on the origin
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("box", args, 3); err != nil {
			return zygo.SexpNull, err
		}
		var size [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size %d: %w", i, err)
			}
			size[i] = f
		}
		s, err := sdf.Box3D(v3.Vec{X: size[0], Y: size[1], Z: size[2]}, 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpSolid{s: s}, nil
	})

	// -----------------------------------------------------------------------
	// (translate solid 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("translate", args, 4); err != nil {
			return zygo.SexpNull, err
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		var d [3]float64
		for i, a := range args[1:] {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("translate: offset %d: %w", i, err)
			}
			d[i] = f
		}
		m := sdf.Translate3d(v3.Vec{X: d[0], Y: d[1], Z: d[2]})
		return &sexpSolid{s: sdf.Transform3D(s, m)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...) and (difference a b)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("union requires at least 2 solids, got %d", len(args))
		}
		solids := make([]sdf.SDF3, 0, len(args))
		for i, a := range args {
			s, err := toSolid(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: argument %d: %w", i, err)
			}
			solids = append(solids, s)
		}
		return &sexpSolid{s: sdf.Union3D(solids...)}, nil
	})

	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if err := fixedArgs("difference", args, 2); err != nil {
			return zygo.SexpNull, err
		}
		a, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		b, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		return &sexpSolid{s: sdf.Difference3D(a, b)}, nil
	})

	// -----------------------------------------------------------------------
	// (voxelize solid :cell 1.0 :inside 1 :outside 0)
	// -----------------------------------------------------------------------
	env.AddFunction("voxelize", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("voxelize requires a solid as its only positional argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxelize: %w", err)
		}
		cell, err := optionalFloat64(pa, "cell", sdfx.DefaultCellSize)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxelize: cell: %w", err)
		}
		inside, err := optionalInt64(pa, "inside", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxelize: inside: %w", err)
		}
		outside, err := optionalInt64(pa, "outside", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxelize: outside: %w", err)
		}

		bb, err := sdfx.FromBox3(s.BoundingBox(), cell)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxelize: %w", err)
		}
		v, err := allocVolume(bb, outside)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("voxelize: %w", err)
		}
		sdfx.Voxelize[int64](v, s, cell, inside, outside)
		return &sexpVolume{v: v}, nil
	})
}
