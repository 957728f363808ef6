package keygen

import (
	"container/list"
	"reflect"
	"slices"
)

// shape is the closed set of categories the traversal dispatches on.
type shape int

const (
	shapeNull shape = iota
	shapePrimitives
	shapeArray
	shapeIterable
	shapeMap
	shapeEntry
	shapeType
	shapeEnum
	shapeReflect
	shapePointer
	shapeScalar
)

var (
	typeOfEntry    = reflect.TypeFor[Entry]()
	typeOfListList = reflect.TypeFor[*list.List]()
)

// walker drives one traversal. It is created per GenerateKey call.
type walker struct {
	enc      Encoder
	reg      *CycleRegistry
	reflect  bool
	maxDepth int
}

func (w *walker) visit(v reflect.Value, depth int) error {
	if w.maxDepth > 0 && depth > w.maxDepth {
		return ErrDepthExceeded
	}
	v = exported(v)
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			w.enc.Null()
			return nil
		}
		v = exported(v.Elem())
	}

	sh := w.classify(v)
	switch sh {
	case shapeNull:
		w.enc.Null()
		return nil

	case shapeType:
		w.enc.Type(v.Interface().(reflect.Type))
		return nil

	case shapeEnum:
		member := v.MethodByName("String").Call(nil)[0].String()
		w.enc.Enum(typeName(v.Type()), member)
		return nil

	case shapeScalar:
		return w.enc.Scalar(v)
	}

	// Everything below descends, so it is bracketed by the registry.
	if !w.reg.Register(v) {
		w.enc.Cycle()
		return nil
	}
	defer w.reg.Unregister(v)

	switch sh {
	case shapePrimitives:
		kind, _ := primitiveKindOf(v.Type().Elem())
		w.enc.Primitives(v, kind)
		return nil

	case shapeArray:
		v = addressable(v)
		w.enc.Begin(v.Len())
		for i := 0; i < v.Len(); i++ {
			if err := w.visit(v.Index(i), depth+1); err != nil {
				return err
			}
		}
		w.enc.End()
		return nil

	case shapeIterable:
		return w.visitIterable(v, depth)

	case shapeMap:
		return w.visitMap(v, depth)

	case shapeEntry:
		e := v.Interface().(Entry)
		return w.visitPair(reflect.ValueOf(e.Key), reflect.ValueOf(e.Value), depth)

	case shapeReflect:
		return w.visitFields(v, depth)

	case shapePointer:
		return w.visit(v.Elem(), depth+1)

	default:
		return w.enc.Scalar(v)
	}
}

// classify picks the shape of v. The order of the checks is the dispatch
// order: first match wins.
func (w *walker) classify(v reflect.Value) shape {
	if !v.IsValid() {
		return shapeNull
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return shapeNull
		}
	}

	t := v.Type()
	if t.Implements(typeOfType) && v.CanInterface() {
		return shapeType
	}
	switch t {
	case typeOfEntry:
		if v.CanInterface() {
			return shapeEntry
		}
	case typeOfListList:
		if v.CanInterface() {
			return shapeIterable
		}
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if _, ok := primitiveKindOf(t.Elem()); ok {
			return shapePrimitives
		}
		return shapeArray
	case reflect.Map:
		return shapeMap
	case reflect.Func:
		switch {
		case t.CanSeq2():
			return shapeMap
		case t.CanSeq():
			return shapeIterable
		default:
			return shapeScalar
		}
	}

	if v.CanInterface() {
		switch allMethod(t) {
		case shapeIterable:
			return shapeIterable
		case shapeMap:
			return shapeMap
		}
	}

	if isEnum(t) && v.CanInterface() {
		return shapeEnum
	}

	trusted := w.enc.Trusts(t) && v.CanInterface()
	switch v.Kind() {
	case reflect.Struct:
		if w.reflect && !trusted {
			return shapeReflect
		}
	case reflect.Pointer:
		if !trusted {
			return shapePointer
		}
	}
	return shapeScalar
}

// allMethod reports whether t declares All() returning an iterator, the
// convention for collection types since range-over-func.
func allMethod(t reflect.Type) shape {
	m, ok := t.MethodByName("All")
	if !ok || m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return shapeScalar
	}
	out := m.Type.Out(0)
	if out.Kind() != reflect.Func {
		return shapeScalar
	}
	switch {
	case out.CanSeq2():
		return shapeMap
	case out.CanSeq():
		return shapeIterable
	default:
		return shapeScalar
	}
}

func (w *walker) visitIterable(v reflect.Value, depth int) error {
	if l, ok := v.Interface().(*list.List); ok {
		w.enc.Begin(l.Len())
		for e := l.Front(); e != nil; e = e.Next() {
			if err := w.visit(reflect.ValueOf(e.Value), depth+1); err != nil {
				return err
			}
		}
		w.enc.End()
		return nil
	}

	seq := v
	if v.Kind() != reflect.Func {
		seq = v.MethodByName("All").Call(nil)[0]
		if seq.IsNil() {
			w.enc.Null()
			return nil
		}
	}
	w.enc.Begin(-1)
	for elem := range seq.Seq() {
		if err := w.visit(elem, depth+1); err != nil {
			return err
		}
	}
	w.enc.End()
	return nil
}

func (w *walker) visitMap(v reflect.Value, depth int) error {
	if v.Kind() == reflect.Map {
		// MapIndex cannot find a NaN key, so the pairs are read with the
		// map's own iterator. Equal keys (only NaN) are ordered by value.
		pairs := make([][2]reflect.Value, 0, v.Len())
		for it := v.MapRange(); it.Next(); {
			pairs = append(pairs, [2]reflect.Value{it.Key(), it.Value()})
		}
		slices.SortFunc(pairs, func(a, b [2]reflect.Value) int {
			if c := compareValues(a[0], b[0]); c != 0 {
				return c
			}
			return compareValues(a[1], b[1])
		})
		w.enc.Begin(len(pairs))
		for _, p := range pairs {
			if err := w.visitPair(p[0], p[1], depth+1); err != nil {
				return err
			}
		}
		w.enc.End()
		return nil
	}

	seq := v
	if v.Kind() != reflect.Func {
		seq = v.MethodByName("All").Call(nil)[0]
		if seq.IsNil() {
			w.enc.Null()
			return nil
		}
	}
	w.enc.Begin(-1)
	for k, val := range seq.Seq2() {
		if err := w.visitPair(k, val, depth+1); err != nil {
			return err
		}
	}
	w.enc.End()
	return nil
}

func (w *walker) visitPair(k, val reflect.Value, depth int) error {
	w.enc.Begin(2)
	if err := w.visit(k, depth+1); err != nil {
		return err
	}
	if err := w.visit(val, depth+1); err != nil {
		return err
	}
	w.enc.End()
	return nil
}

// visitFields walks a struct as [type, field...] with embedded structs
// flattened in declaration order.
func (w *walker) visitFields(v reflect.Value, depth int) error {
	v = addressable(v)
	fields := traitsOf(v.Type()).fields
	w.enc.Begin(len(fields) + 1)
	w.enc.Type(v.Type())
	for _, path := range fields {
		if err := w.visit(v.FieldByIndex(path), depth+1); err != nil {
			return err
		}
	}
	w.enc.End()
	return nil
}
