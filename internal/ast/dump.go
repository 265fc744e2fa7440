package ast

import (
	"fmt"
	"reflect"
	"strings"
)

// Dump renders a node tree as an indented outline, one node per line:
// the node's concrete type, its scalar fields, then its children. Used
// by the CLI's parse command and by snapshot tests; the format is stable
// but not machine-parseable.
func Dump(n Node) string {
	var sb strings.Builder
	dumpValue(&sb, reflect.ValueOf(n), "", "")
	return sb.String()
}

func dumpValue(sb *strings.Builder, v reflect.Value, label, indent string) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	name := v.Type().Name()
	sb.WriteString(indent)
	if label != "" {
		sb.WriteString(label)
		sb.WriteString(": ")
	}
	sb.WriteString(name)

	var scalars []string
	type child struct {
		label string
		value reflect.Value
	}
	var children []child

	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		fv := v.Field(i)
		if f.Name == "Base" || !f.IsExported() {
			continue
		}
		switch fv.Kind() {
		case reflect.String:
			if s := fv.String(); s != "" {
				scalars = append(scalars, fmt.Sprintf("%s=%q", f.Name, s))
			}
		case reflect.Bool:
			if fv.Bool() {
				scalars = append(scalars, f.Name)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if fv.Int() != 0 {
				scalars = append(scalars, fmt.Sprintf("%s=%v", f.Name, fv.Interface()))
			}
		case reflect.Float64:
			if fv.Float() != 0 {
				scalars = append(scalars, fmt.Sprintf("%s=%v", f.Name, fv.Float()))
			}
		case reflect.Slice:
			for j := 0; j < fv.Len(); j++ {
				children = append(children, child{fmt.Sprintf("%s[%d]", f.Name, j), fv.Index(j)})
			}
		case reflect.Pointer, reflect.Interface, reflect.Struct:
			children = append(children, child{f.Name, fv})
		}
	}

	if len(scalars) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(scalars, ", "))
		sb.WriteString(")")
	}
	sb.WriteString("\n")

	for _, c := range children {
		dumpValue(sb, c.value, c.label, indent+"  ")
	}
}
