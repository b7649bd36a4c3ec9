package multipartenc

import "reflect"

// assign stores the aggregated values into the struct v. It is only called
// once the extraction succeeded, so the target is never partially updated.
func (a *aggregator) assign(v reflect.Value) {
	for i, f := range a.schema.fields {
		field := v.FieldByIndex(f.index)
		vals := a.values[i]

		switch f.card {
		case CardinalityRepeated:
			if len(vals) == 0 {
				field.SetZero()
				continue
			}
			slice := reflect.MakeSlice(field.Type(), len(vals), len(vals))
			for j, val := range vals {
				setValue(slice.Index(j), val)
			}
			field.Set(slice)

		default:
			// An optional field that received nothing is left as a nil
			// pointer, the absent marker.
			if len(vals) == 0 {
				field.SetZero()
				continue
			}
			setValue(field, vals[0])
		}
	}
}

// setValue sets dst to val, allocating a new value if dst is a pointer.
func setValue(dst, val reflect.Value) {
	if dst.Kind() == reflect.Pointer && val.Kind() != reflect.Pointer {
		p := reflect.New(dst.Type().Elem())
		p.Elem().Set(val)
		dst.Set(p)
		return
	}
	dst.Set(val)
}
