package keygen

import (
	"fmt"
	"reflect"
	"runtime"
)

// Method describes the invoked method. It is built once per call site by
// the interception layer and never modified.
type Method struct {
	// Receiver is the declaring type, nil for plain functions.
	Receiver reflect.Type
	Name     string
	Results  []reflect.Type
	Params   []reflect.Type
}

// NewMethod builds a Method from its parts.
func NewMethod(recv reflect.Type, name string, results, params []reflect.Type) Method {
	return Method{
		Receiver: recv,
		Name:     name,
		Results:  append(make([]reflect.Type, 0, len(results)), results...),
		Params:   append(make([]reflect.Type, 0, len(params)), params...),
	}
}

// MethodOf resolves the method called name in the method set of recv.
func MethodOf(recv reflect.Type, name string) (Method, error) {
	if recv == nil {
		return Method{}, fmt.Errorf("%w: nil receiver type", ErrMethodNotFound)
	}
	m, ok := recv.MethodByName(name)
	if !ok {
		return Method{}, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, typeName(recv), name)
	}
	ft := m.Type
	first := 1 // skip the receiver
	if recv.Kind() == reflect.Interface {
		first = 0
	}
	params := make([]reflect.Type, 0, ft.NumIn()-first)
	for i := first; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	results := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		results = append(results, ft.Out(i))
	}
	return Method{Receiver: recv, Name: name, Results: results, Params: params}, nil
}

// FuncOf describes a plain function, a closure or a method value. The name
// is the symbol name the runtime reports, which is stable across builds of
// the same source.
func FuncOf(fn any) (Method, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return Method{}, fmt.Errorf("%w: %T", ErrNotFunc, fn)
	}
	name := "func"
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		name = f.Name()
	}
	ft := v.Type()
	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}
	results := make([]reflect.Type, ft.NumOut())
	for i := range results {
		results[i] = ft.Out(i)
	}
	return Method{Name: name, Results: results, Params: params}, nil
}

// Return is the method's return type identity: the single result type, nil
// when there is no result, or the ordered result types when there are
// several.
func (m Method) Return() any {
	switch len(m.Results) {
	case 0:
		return nil
	case 1:
		return m.Results[0]
	default:
		return m.Results
	}
}

// String returns "pkg.Type.Name", or just the name for plain functions.
func (m Method) String() string {
	if m.Receiver == nil {
		return m.Name
	}
	return typeName(m.Receiver) + "." + m.Name
}

// Signature decides how much of the method is folded into the key ahead of
// the arguments.
type Signature struct {
	// IncludeMethod folds in the declaring type, name and return type.
	IncludeMethod bool

	// IncludeParameterTypes additionally folds in the parameter types. It
	// has no effect unless IncludeMethod is set. Resolving parameter types
	// is the costly part, so callers that never overload can turn it off.
	IncludeParameterTypes bool
}

// input is the value the traversal walks: the arguments alone, or
// [receiver, name, return, params, arguments] with params dropped when
// parameter types are excluded.
func (s Signature) input(m Method, args []any) []any {
	if args == nil {
		args = []any{}
	}
	if !s.IncludeMethod {
		return args
	}
	if s.IncludeParameterTypes {
		params := m.Params
		if params == nil {
			params = []reflect.Type{}
		}
		return []any{m.Receiver, m.Name, m.Return(), params, args}
	}
	return []any{m.Receiver, m.Name, m.Return(), args}
}
