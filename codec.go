package smcore

import (
	"fmt"
	"reflect"
	"time"

	"github.com/aws/sagemaker-core-sub001/schema"
)

// Codec converts between generated typed objects and wire-format payloads,
// recursing through the shape graph. Both directions are pure: no state is
// touched beyond the objects being constructed or filled in.
type Codec struct {
	Graph    *schema.Graph
	Registry *Registry
}

// NewCodec returns a codec over the given shape graph and constructor
// registry.
func NewCodec(g *schema.Graph, r *Registry) *Codec {
	return &Codec{Graph: g, Registry: r}
}

// Serialize converts a typed object into a wire dictionary keyed by the
// canonical member names of the named structure shape. Unset fields (nil
// pointers, nil slices, nil maps) are omitted entirely, never emitted as
// null. Nested structures, lists, and maps recurse; scalars pass through.
func (c *Codec) Serialize(v any, shapeName string) (map[string]any, error) {
	shape, err := c.Graph.Resolve(shapeName)
	if err != nil {
		return nil, err
	}
	if shape.Kind != schema.KindStructure {
		return nil, &ShapeError{ShapeName: shapeName, Detail: fmt.Sprintf("cannot serialize %s shape as a request body", shape.Kind)}
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &ShapeError{ShapeName: shapeName, Detail: fmt.Sprintf("expected struct, got %s", rv.Kind())}
	}

	out := make(map[string]any)
	for _, m := range shape.Members {
		fv := rv.FieldByName(m.Name)
		if !fv.IsValid() {
			continue
		}
		switch fv.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			if fv.IsNil() {
				continue
			}
		}
		target, err := c.Graph.Resolve(m.Target)
		if err != nil {
			return nil, err
		}
		wire, err := c.serializeValue(fv, target)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Name, err)
		}
		out[m.Name] = wire
	}
	return out, nil
}

func (c *Codec) serializeValue(fv reflect.Value, target *schema.Shape) (any, error) {
	for fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil, nil
		}
		fv = fv.Elem()
	}

	switch {
	case target.Kind.IsScalar():
		return fv.Interface(), nil

	case target.Kind == schema.KindStructure:
		return c.Serialize(fv.Interface(), target.Name)

	case target.Kind == schema.KindList:
		item, err := c.Graph.Resolve(target.MemberTarget)
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, fv.Len())
		for i := 0; i < fv.Len(); i++ {
			v, err := c.serializeListItem(fv.Index(i), target, item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case target.Kind == schema.KindMap:
		value, err := c.Graph.Resolve(target.ValueTarget)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, fv.Len())
		iter := fv.MapRange()
		for iter.Next() {
			v, err := c.serializeValue(iter.Value(), value)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = v
		}
		return out, nil
	}
	return nil, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("unhandled shape kind %q", target.Kind)}
}

// serializeListItem mirrors the decode rule for lists: scalar items pass
// through and structure items recurse; any other item kind has no rule.
func (c *Codec) serializeListItem(fv reflect.Value, list, item *schema.Shape) (any, error) {
	switch {
	case item.Kind.IsScalar(), item.Kind == schema.KindStructure:
		return c.serializeValue(fv, item)
	}
	return nil, &ShapeError{ShapeName: list.Name, Detail: fmt.Sprintf("unhandled list member kind %q", item.Kind)}
}

// Transform deserializes a wire payload described by the named structure
// shape. When existing is nil a fresh object is constructed through the
// registry; otherwise fields are assigned on existing in place, which is how
// refresh gets its partial-update semantics: members absent from (or null in)
// the payload are left untouched.
func (c *Codec) Transform(payload map[string]any, shapeName string, existing any) (any, error) {
	shape, err := c.Graph.Resolve(shapeName)
	if err != nil {
		return nil, err
	}
	if shape.Kind != schema.KindStructure {
		return nil, &ShapeError{ShapeName: shapeName, Detail: fmt.Sprintf("cannot decode payload as %s shape", shape.Kind)}
	}

	obj := existing
	if obj == nil {
		obj, err = c.Registry.New(shapeName)
		if err != nil {
			return nil, err
		}
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, &ShapeError{ShapeName: shapeName, Detail: fmt.Sprintf("decode target must be a struct pointer, got %T", obj)}
	}
	rv = rv.Elem()

	for _, m := range shape.Members {
		raw, ok := payload[m.Name]
		if !ok || raw == nil {
			continue
		}
		fv := rv.FieldByName(m.Name)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		target, err := c.Graph.Resolve(m.Target)
		if err != nil {
			return nil, err
		}
		dv, err := c.decodeValue(raw, target, fv.Type())
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Name, err)
		}
		fv.Set(dv)
	}
	return obj, nil
}

// decodeValue decodes one wire value into the given field type, dispatching
// on the kind of its shape.
func (c *Codec) decodeValue(raw any, target *schema.Shape, ft reflect.Type) (reflect.Value, error) {
	switch {
	case target.Kind.IsScalar():
		return convertScalar(raw, ft, target)

	case target.Kind == schema.KindStructure:
		payload, ok := raw.(map[string]any)
		if !ok {
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("expected object, got %T", raw)}
		}
		obj, err := c.Transform(payload, target.Name, nil)
		if err != nil {
			return reflect.Value{}, err
		}
		ov := reflect.ValueOf(obj)
		if !ov.Type().AssignableTo(ft) {
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("constructor produced %s, field wants %s", ov.Type(), ft)}
		}
		return ov, nil

	case target.Kind == schema.KindList:
		return c.decodeList(raw, target, ft)

	case target.Kind == schema.KindMap:
		return c.decodeMap(raw, target, ft)
	}
	return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("unhandled shape kind %q", target.Kind)}
}

// decodeList decodes a wire array. Scalar items pass through and structure
// items recurse; any other item kind (list-of-list and the like) is an
// unhandled combination and is rejected rather than silently mis-decoded.
func (c *Codec) decodeList(raw any, list *schema.Shape, ft reflect.Type) (reflect.Value, error) {
	items, ok := raw.([]any)
	if !ok {
		return reflect.Value{}, &ShapeError{ShapeName: list.Name, Detail: fmt.Sprintf("expected array, got %T", raw)}
	}
	item, err := c.Graph.Resolve(list.MemberTarget)
	if err != nil {
		return reflect.Value{}, err
	}
	if !item.Kind.IsScalar() && item.Kind != schema.KindStructure {
		return reflect.Value{}, &ShapeError{ShapeName: list.Name, Detail: fmt.Sprintf("unhandled list member kind %q", item.Kind)}
	}
	if ft.Kind() != reflect.Slice {
		return reflect.Value{}, &ShapeError{ShapeName: list.Name, Detail: fmt.Sprintf("field type %s is not a slice", ft)}
	}

	out := reflect.MakeSlice(ft, 0, len(items))
	for _, it := range items {
		dv, err := c.decodeValue(it, item, ft.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, dv)
	}
	return out, nil
}

// decodeMap decodes a wire object with string keys. Values follow the same
// rules as list items, plus nested list and map values.
func (c *Codec) decodeMap(raw any, m *schema.Shape, ft reflect.Type) (reflect.Value, error) {
	key, err := c.Graph.Resolve(m.KeyTarget)
	if err != nil {
		return reflect.Value{}, err
	}
	if key.Kind != schema.KindString {
		return reflect.Value{}, &ShapeError{ShapeName: m.Name, Detail: fmt.Sprintf("unhandled map key kind %q", key.Kind)}
	}
	entries, ok := raw.(map[string]any)
	if !ok {
		return reflect.Value{}, &ShapeError{ShapeName: m.Name, Detail: fmt.Sprintf("expected object, got %T", raw)}
	}
	value, err := c.Graph.Resolve(m.ValueTarget)
	if err != nil {
		return reflect.Value{}, err
	}
	if ft.Kind() != reflect.Map || ft.Key().Kind() != reflect.String {
		return reflect.Value{}, &ShapeError{ShapeName: m.Name, Detail: fmt.Sprintf("field type %s is not a string-keyed map", ft)}
	}

	out := reflect.MakeMapWithSize(ft, len(entries))
	for k, v := range entries {
		dv, err := c.decodeValue(v, value, ft.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(reflect.ValueOf(k), dv)
	}
	return out, nil
}

var timeType = reflect.TypeOf(time.Time{})

// convertScalar coerces a decoded JSON value into the field's scalar type,
// allocating a pointer when the field is optional.
func convertScalar(raw any, ft reflect.Type, target *schema.Shape) (reflect.Value, error) {
	base := ft
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	var out reflect.Value
	switch {
	case base == timeType:
		t, err := coerceTime(raw)
		if err != nil {
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: err.Error()}
		}
		out = reflect.ValueOf(t)

	case base.Kind() == reflect.String:
		s, ok := raw.(string)
		if !ok {
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("expected string, got %T", raw)}
		}
		out = reflect.ValueOf(s).Convert(base)

	case base.Kind() == reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("expected boolean, got %T", raw)}
		}
		out = reflect.ValueOf(b)

	case base.Kind() >= reflect.Int && base.Kind() <= reflect.Int64:
		n, err := coerceFloat(raw)
		if err != nil {
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: err.Error()}
		}
		out = reflect.ValueOf(int64(n)).Convert(base)

	case base.Kind() == reflect.Float32 || base.Kind() == reflect.Float64:
		n, err := coerceFloat(raw)
		if err != nil {
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: err.Error()}
		}
		out = reflect.ValueOf(n).Convert(base)

	case base.Kind() == reflect.Slice && base.Elem().Kind() == reflect.Uint8:
		switch v := raw.(type) {
		case []byte:
			out = reflect.ValueOf(v)
		case string:
			out = reflect.ValueOf([]byte(v))
		default:
			return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("expected blob, got %T", raw)}
		}

	default:
		return reflect.Value{}, &ShapeError{ShapeName: target.Name, Detail: fmt.Sprintf("no scalar rule for field type %s", ft)}
	}

	if ft.Kind() == reflect.Pointer {
		p := reflect.New(out.Type())
		p.Elem().Set(out)
		return p, nil
	}
	return out, nil
}

func coerceFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

func coerceTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad timestamp %q: %w", v, err)
		}
		return t, nil
	case float64:
		sec := int64(v)
		nsec := int64((v - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("expected timestamp, got %T", raw)
}
