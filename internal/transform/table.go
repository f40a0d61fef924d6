package transform

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// TypeID addresses a descriptor in a Table.
type TypeID int

// Kind classifies a descriptor.
type Kind int

const (
	KindDynamic Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindEnum
	KindRecord
	KindSequence
	KindMapping
	KindOptional
	KindUnion
	KindVariable
)

var kindNames = map[Kind]string{
	KindDynamic:  "dynamic",
	KindString:   "string",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindEnum:     "enum",
	KindRecord:   "record",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindOptional: "optional",
	KindUnion:    "union",
	KindVariable: "variable",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Wrapper is implemented, on the pointer receiver, by union types that hold
// either a concrete value or a deferred reference to one.
type Wrapper interface {
	WrappedType() reflect.Type
	SetValue(v reflect.Value)
	SetReference(path string)
	Unwrap() (value reflect.Value, reference string, set bool)
}

// Enum is implemented by named string types with a closed set of values.
type Enum interface {
	EnumValues() []string
}

var (
	wrapperType = reflect.TypeFor[Wrapper]()
	enumType    = reflect.TypeFor[Enum]()
	ctyValue    = reflect.TypeFor[cty.Value]()
)

// Field describes one field of a record.
type Field struct {
	Name     string
	Type     TypeID
	Index    int
	Required bool
	Default  *string
}

// Descriptor is one entry of a Table.
type Descriptor struct {
	Kind   Kind
	GoType reflect.Type

	// Elem is the element type of sequences, mappings, optionals and
	// variables.
	Elem TypeID

	// Arms lists the union members: the concrete arm first, then the
	// variable arm.
	Arms []TypeID

	Fields []Field
	Enum   []string

	fieldIndex map[string]int
}

// Name returns a human-readable type name for error messages.
func (d *Descriptor) Name() string {
	if d.Kind == KindVariable {
		return "Variable[" + d.GoType.String() + "]"
	}
	return d.GoType.String()
}

// Field looks up a record field by its configuration name.
func (d *Descriptor) Field(name string) (Field, bool) {
	i, ok := d.fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return d.Fields[i], true
}

// Table is an interned set of type descriptors.
type Table struct {
	mu        sync.Mutex
	descs     []*Descriptor
	ids       map[reflect.Type]TypeID
	variables map[TypeID]TypeID
}

// NewTable creates an empty descriptor table.
func NewTable() *Table {
	return &Table{
		ids:       make(map[reflect.Type]TypeID),
		variables: make(map[TypeID]TypeID),
	}
}

var defaultTable = NewTable()

// Default returns the process-wide table used by the package-level helpers.
func Default() *Table {
	return defaultTable
}

// Intern returns the TypeID for rt, building descriptors for rt and every
// type reachable from it on first use.
func (t *Table) Intern(rt reflect.Type) (TypeID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mark := len(t.descs)
	id, err := t.intern(rt)
	if err != nil {
		t.rollback(mark)
		return 0, err
	}
	return id, nil
}

// MustIntern is like Intern but panics on a modelling error. It is meant for
// package initialisation of schema types.
func (t *Table) MustIntern(rt reflect.Type) TypeID {
	id, err := t.Intern(rt)
	if err != nil {
		panic(err)
	}
	return id
}

// Descriptor returns the descriptor for id.
func (t *Table) Descriptor(id TypeID) *Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.descs[id]
}

// Len returns the number of descriptors in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.descs)
}

func (t *Table) rollback(mark int) {
	for _, d := range t.descs[mark:] {
		if d.Kind == KindVariable {
			continue
		}
		delete(t.ids, d.GoType)
	}
	for elem, v := range t.variables {
		if int(v) >= mark || int(elem) >= mark {
			delete(t.variables, elem)
		}
	}
	t.descs = t.descs[:mark]
}

func (t *Table) add(d *Descriptor) TypeID {
	id := TypeID(len(t.descs))
	t.descs = append(t.descs, d)
	if d.Kind != KindVariable {
		t.ids[d.GoType] = id
	}
	return id
}

func (t *Table) intern(rt reflect.Type) (TypeID, error) {
	if id, ok := t.ids[rt]; ok {
		return id, nil
	}

	switch {
	case rt == ctyValue || (rt.Kind() == reflect.Interface && rt.NumMethod() == 0):
		return t.add(&Descriptor{Kind: KindDynamic, GoType: rt}), nil
	case rt.Kind() == reflect.Struct && reflect.PointerTo(rt).Implements(wrapperType):
		return t.internUnion(rt)
	case rt.Kind() == reflect.String && rt.Implements(enumType):
		values := reflect.Zero(rt).Interface().(Enum).EnumValues()
		return t.add(&Descriptor{Kind: KindEnum, GoType: rt, Enum: values}), nil
	}

	switch rt.Kind() {
	case reflect.String:
		return t.add(&Descriptor{Kind: KindString, GoType: rt}), nil
	case reflect.Bool:
		return t.add(&Descriptor{Kind: KindBool, GoType: rt}), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return t.add(&Descriptor{Kind: KindInt, GoType: rt}), nil
	case reflect.Float32, reflect.Float64:
		return t.add(&Descriptor{Kind: KindFloat, GoType: rt}), nil
	case reflect.Pointer:
		return t.internContainer(KindOptional, rt)
	case reflect.Slice:
		return t.internContainer(KindSequence, rt)
	case reflect.Map:
		if rt.Key().Kind() != reflect.String {
			return 0, fmt.Errorf("unsupported map key type %s in %s: keys must be strings", rt.Key(), rt)
		}
		return t.internContainer(KindMapping, rt)
	case reflect.Struct:
		return t.internRecord(rt)
	default:
		return 0, fmt.Errorf("unsupported Go type %s", rt)
	}
}

// internContainer registers the container before its element, so that a
// container reachable from its own element resolves to the same entry.
func (t *Table) internContainer(kind Kind, rt reflect.Type) (TypeID, error) {
	d := &Descriptor{Kind: kind, GoType: rt}
	id := t.add(d)
	elem, err := t.intern(rt.Elem())
	if err != nil {
		return 0, fmt.Errorf("in %s: %w", rt, err)
	}
	d.Elem = elem
	return id, nil
}

func (t *Table) internUnion(rt reflect.Type) (TypeID, error) {
	d := &Descriptor{Kind: KindUnion, GoType: rt}
	id := t.add(d)

	wrapped := reflect.New(rt).Interface().(Wrapper).WrappedType()
	if wrapped.Kind() == reflect.Pointer {
		return 0, fmt.Errorf("ambiguous union %s: the concrete arm %s is itself optional", rt, wrapped)
	}
	if reflect.PointerTo(wrapped).Implements(wrapperType) {
		return 0, fmt.Errorf("ambiguous union %s: nested variable arms", rt)
	}

	concrete, err := t.intern(wrapped)
	if err != nil {
		return 0, fmt.Errorf("in %s: %w", rt, err)
	}
	d.Arms = []TypeID{concrete, t.variableOf(concrete)}
	return id, nil
}

func (t *Table) variableOf(elem TypeID) TypeID {
	if id, ok := t.variables[elem]; ok {
		return id
	}
	id := t.add(&Descriptor{Kind: KindVariable, GoType: t.descs[elem].GoType, Elem: elem})
	t.variables[elem] = id
	return id
}

func (t *Table) internRecord(rt reflect.Type) (TypeID, error) {
	d := &Descriptor{Kind: KindRecord, GoType: rt, fieldIndex: make(map[string]int)}
	id := t.add(d)

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("json")
		parts := strings.Split(tag, ",")
		name := parts[0]
		if name == "" || name == "-" {
			continue
		}
		optional := false
		for _, opt := range parts[1:] {
			if opt == "omitempty" {
				optional = true
			}
		}

		fieldID, err := t.intern(sf.Type)
		if err != nil {
			return 0, fmt.Errorf("in field '%s' of %s: %w", name, rt, err)
		}

		field := Field{Name: name, Type: fieldID, Index: i, Required: !optional}
		if def, ok := sf.Tag.Lookup("default"); ok {
			field.Default = &def
			field.Required = false
		}

		if _, dup := d.fieldIndex[name]; dup {
			return 0, fmt.Errorf("duplicate field name '%s' in %s", name, rt)
		}
		d.fieldIndex[name] = len(d.Fields)
		d.Fields = append(d.Fields, field)
	}
	return id, nil
}
