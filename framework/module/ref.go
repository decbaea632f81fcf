package module

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Ref is a module-like input to the normalizer. The set of variants is
// closed: Name, Handle and Of.
type Ref interface {
	// Resolve maps the reference to a module, importing through cat when
	// needed.
	Resolve(cat *Catalog) (*Module, error)

	ref()
}

// Name refers to a module by its registered name. Resolving it imports the
// module, which runs its loader on first use.
type Name string

func (n Name) Resolve(cat *Catalog) (*Module, error) { return cat.Import(string(n)) }

func (Name) ref() {}

type handle struct{ m *Module }

// Handle refers to an already-built module.
func Handle(m *Module) Ref { return handle{m: m} }

func (h handle) Resolve(*Catalog) (*Module, error) {
	if h.m == nil {
		return nil, &UnresolvableModuleError{Item: "(*module.Module)(nil)"}
	}
	return h.m, nil
}

func (handle) ref() {}

// Owner is implemented by values that know the module they belong to.
type Owner interface {
	Module() *Module
}

// Namer is implemented by values that can name the module defining them.
type Namer interface {
	ModuleName() string
}

type derived struct{ v any }

// Of refers to the module that defines v. Resolution tries, in order:
//  1. v implements Owner: the module it returns
//  2. v implements Namer: import the name it returns
//  3. v's named type (or, for a function, the function itself) lives in a
//     package: import that package path
//
// Anything else fails with *UnresolvableModuleError.
func Of(v any) Ref { return derived{v: v} }

func (d derived) Resolve(cat *Catalog) (*Module, error) {
	if m, ok := d.v.(*Module); ok && m != nil {
		return m, nil
	}
	if o, ok := d.v.(Owner); ok {
		if m := o.Module(); m != nil {
			return m, nil
		}
	}
	if n, ok := d.v.(Namer); ok {
		if name := n.ModuleName(); name != "" {
			return cat.Import(name)
		}
	}
	if pkg := definingPackage(d.v); pkg != "" {
		return cat.Import(pkg)
	}
	return nil, &UnresolvableModuleError{Item: fmt.Sprintf("%#v", d.v)}
}

func (derived) ref() {}

// definingPackage returns the import path of the package declaring v's type,
// or of v itself when v is a reflect.Type or a function.
func definingPackage(v any) string {
	if v == nil {
		return ""
	}
	t, ok := v.(reflect.Type)
	if !ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Func && !rv.IsNil() {
			if fn := runtime.FuncForPC(rv.Pointer()); fn != nil {
				return funcPackage(fn.Name())
			}
			return ""
		}
		t = rv.Type()
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.PkgPath()
}

// funcPackage extracts "example.com/pkg" from "example.com/pkg.Func" or
// "example.com/pkg.(*T).Method". The linker escapes dots in the last path
// element ("gopkg.in/yaml%2ev3.Unmarshal"), so those are restored.
func funcPackage(symbol string) string {
	slash := strings.LastIndex(symbol, "/")
	dot := strings.Index(symbol[slash+1:], ".")
	if dot < 0 {
		return ""
	}
	return strings.ReplaceAll(symbol[:slash+1+dot], "%2e", ".")
}

// ToRef maps a raw item onto a Ref: a Ref is kept, a string becomes Name,
// a *Module becomes Handle and anything else becomes Of.
func ToRef(item any) Ref {
	switch x := item.(type) {
	case Ref:
		return x
	case string:
		return Name(x)
	case *Module:
		return Handle(x)
	default:
		return Of(item)
	}
}
