// Package mutation applies edits to résumé snapshots without touching the
// snapshot they were applied to. Only the containers along the edited path
// are copied; everything else is shared with the previous snapshot.
package mutation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"resume-builder/internal/model"
)

// ApplyPathUpdate sets the field addressed by a dot separated path of json
// names, e.g. "contact.full_name" or "experience.1.bullets.0".
func ApplyPathUpdate(doc model.Document, path string, value any) (model.Document, error) {
	if strings.TrimSpace(path) == "" {
		return doc, &InvalidPathError{Path: path, Reason: "empty path"}
	}
	out, err := set(reflect.ValueOf(doc), strings.Split(path, "."), value, path)
	if err != nil {
		return doc, err
	}
	return out.Interface().(model.Document), nil
}

// AppendArrayItem appends item to a top-level array section. Struct items
// are copied and receive a fresh id when they have none.
func AppendArrayItem(doc model.Document, key string, item any) (model.Document, error) {
	root, idx, err := section(doc, key)
	if err != nil {
		return doc, err
	}
	arr := root.Field(idx)
	elemT := arr.Type().Elem()

	elem, err := assign(elemT, item, key)
	if err != nil {
		return doc, err
	}
	if elemT.Kind() == reflect.Pointer {
		cp := reflect.New(elemT.Elem())
		if !elem.IsNil() {
			cp.Elem().Set(elem.Elem())
		}
		if id := cp.Elem().FieldByName("ID"); id.IsValid() && id.Kind() == reflect.String && id.String() == "" {
			id.SetString(model.NewID())
		}
		elem = cp
	}

	next := reflect.MakeSlice(arr.Type(), arr.Len(), arr.Len()+1)
	reflect.Copy(next, arr)
	next = reflect.Append(next, elem)
	return withField(root, idx, next), nil
}

// RemoveArrayItem removes the entry at index from a top-level array
// section. An index outside the array leaves doc as is.
func RemoveArrayItem(doc model.Document, key string, index int) (model.Document, error) {
	root, idx, err := section(doc, key)
	if err != nil {
		return doc, err
	}
	arr := root.Field(idx)
	if index < 0 || index >= arr.Len() {
		return doc, nil
	}
	next := reflect.MakeSlice(arr.Type(), 0, arr.Len()-1)
	next = reflect.AppendSlice(next, arr.Slice(0, index))
	next = reflect.AppendSlice(next, arr.Slice(index+1, arr.Len()))
	return withField(root, idx, next), nil
}

func section(doc model.Document, key string) (reflect.Value, int, error) {
	root := reflect.ValueOf(doc)
	idx, ok := fieldByName(root.Type(), key)
	if !ok || root.Field(idx).Kind() != reflect.Slice {
		return reflect.Value{}, 0, &InvalidPathError{Path: key, Segment: key, Reason: "not an array section"}
	}
	return root, idx, nil
}

func withField(root reflect.Value, idx int, v reflect.Value) model.Document {
	out := reflect.New(root.Type()).Elem()
	out.Set(root)
	out.Field(idx).Set(v)
	return out.Interface().(model.Document)
}

// set returns a copy of cur with the value at segs replaced.
func set(cur reflect.Value, segs []string, value any, path string) (reflect.Value, error) {
	if len(segs) == 0 {
		return assign(cur.Type(), value, path)
	}
	seg := segs[0]

	switch cur.Kind() {
	case reflect.Pointer:
		t := cur.Type().Elem()
		if t.Kind() != reflect.Struct {
			return reflect.Value{}, &InvalidPathError{Path: path, Segment: seg, Reason: "not a container"}
		}
		base := reflect.New(t).Elem()
		if !cur.IsNil() {
			base = cur.Elem()
		}
		child, err := set(base, segs, value, path)
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t)
		p.Elem().Set(child)
		return p, nil

	case reflect.Struct:
		idx, ok := fieldByName(cur.Type(), seg)
		if !ok {
			return reflect.Value{}, &InvalidPathError{Path: path, Segment: seg, Reason: "no such field"}
		}
		child, err := set(cur.Field(idx), segs[1:], value, path)
		if err != nil {
			return reflect.Value{}, err
		}
		cp := reflect.New(cur.Type()).Elem()
		cp.Set(cur)
		cp.Field(idx).Set(child)
		return cp, nil

	case reflect.Slice:
		i, err := strconv.Atoi(seg)
		if err != nil {
			return reflect.Value{}, &InvalidPathError{Path: path, Segment: seg, Reason: "array index expected"}
		}
		if i < 0 || i >= cur.Len() {
			return reflect.Value{}, &InvalidPathError{Path: path, Segment: seg, Reason: "index out of range"}
		}
		child, err := set(cur.Index(i), segs[1:], value, path)
		if err != nil {
			return reflect.Value{}, err
		}
		cp := reflect.MakeSlice(cur.Type(), cur.Len(), cur.Len())
		reflect.Copy(cp, cur)
		cp.Index(i).Set(child)
		return cp, nil
	}

	return reflect.Value{}, &InvalidPathError{Path: path, Segment: seg, Reason: "not a container"}
}

// assign converts value to t. Values that are neither assignable nor
// convertible go through a JSON round trip, which covers decoded request
// bodies such as []any for []string.
func assign(t reflect.Type, value any, path string) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, &InvalidPathError{Path: path, Reason: fmt.Sprintf("cannot clear %s", t)}
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if t.Kind() == reflect.Pointer && v.Type().AssignableTo(t.Elem()) {
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, nil
	}
	if v.Kind() == t.Kind() && v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return reflect.Value{}, &InvalidPathError{Path: path, Reason: err.Error()}
	}
	p := reflect.New(t)
	if err := json.Unmarshal(b, p.Interface()); err != nil {
		return reflect.Value{}, &InvalidPathError{Path: path, Reason: fmt.Sprintf("value does not fit %s", t)}
	}
	return p.Elem(), nil
}

func fieldByName(t reflect.Type, name string) (int, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name {
			return i, true
		}
	}
	return 0, false
}
