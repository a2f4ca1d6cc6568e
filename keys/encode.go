package keys

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/hashstructure/v2"
)

// ErrUnhashable reports that a call signature contains a value that cannot be
// converted into key material (functions, channels, cyclic structures).
var ErrUnhashable = errors.New("keys: unhashable call signature")

// encoder writes a canonical, self-delimiting representation of values into w.
// The encoding is normalizing: numeric values that compare equal produce the
// same bytes regardless of their Go type, and map entries are emitted in a
// stable order.
type encoder struct {
	w    io.Writer
	seen map[uintptr]struct{}
}

func (e *encoder) writeTag(tag string) {
	io.WriteString(e.w, tag)
	io.WriteString(e.w, ";")
}

func (e *encoder) writeFrame(tag byte, s string) {
	fmt.Fprintf(e.w, "%c:%d:%s;", tag, len(s), s)
}

func (e *encoder) encode(v any) error {
	if v == nil {
		e.writeTag("n")
		return nil
	}
	if h, ok := v.(Hasher); ok {
		fmt.Fprintf(e.w, "h:%x;", h.KeyHash())
		return nil
	}
	return e.encodeValue(reflect.ValueOf(v))
}

func (e *encoder) encodeValue(rv reflect.Value) error {
	// Unwrap interfaces and pointers so equal values compare equal regardless
	// of indirection.
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			e.writeTag("n")
			return nil
		}
		if rv.Kind() == reflect.Pointer {
			p := rv.Pointer()
			if err := e.enter(p); err != nil {
				return err
			}
			defer e.leave(p)
		}
		if rv.CanInterface() {
			if h, ok := rv.Interface().(Hasher); ok {
				fmt.Fprintf(e.w, "h:%x;", h.KeyHash())
				return nil
			}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			e.writeTag("b:1")
		} else {
			e.writeTag("b:0")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.writeInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			e.writeInt(int64(u))
		} else {
			fmt.Fprintf(e.w, "u:%d;", u)
		}
	case reflect.Float32, reflect.Float64:
		e.writeFloat(rv.Float())
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		if imag(c) == 0 {
			e.writeFloat(real(c))
		} else {
			fmt.Fprintf(e.w, "c:%s,%s;",
				strconv.FormatFloat(real(c), 'x', -1, 64),
				strconv.FormatFloat(imag(c), 'x', -1, 64))
		}
	case reflect.String:
		e.writeFrame('s', rv.String())
	case reflect.Slice, reflect.Array:
		return e.encodeList(rv)
	case reflect.Map:
		return e.encodeMap(rv)
	case reflect.Struct:
		return e.encodeStruct(rv)
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return errors.Wrapf(ErrUnhashable, "value of type %s", rv.Type())
	default:
		return errors.Wrapf(ErrUnhashable, "value of type %s", rv.Type())
	}
	return nil
}

// writeInt is the single sink for all integral values, including floats with
// an exact integral value, so 3, uint8(3) and 3.0 share one representation.
func (e *encoder) writeInt(i int64) {
	fmt.Fprintf(e.w, "i:%d;", i)
}

func (e *encoder) writeFloat(f float64) {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f <= math.MaxInt64 {
		e.writeInt(int64(f))
		return
	}
	fmt.Fprintf(e.w, "f:%s;", strconv.FormatFloat(f, 'x', -1, 64))
}

func (e *encoder) encodeList(rv reflect.Value) error {
	if rv.Kind() == reflect.Slice {
		if rv.IsNil() {
			e.writeTag("n")
			return nil
		}
		if err := e.enter(rv.Pointer()); err != nil {
			return err
		}
		defer e.leave(rv.Pointer())
	}
	// Byte sequences are scalar material, not element lists.
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		e.writeFrame('y', string(b))
		return nil
	}
	io.WriteString(e.w, "l:")
	for i := 0; i < rv.Len(); i++ {
		if err := e.encodeValue(rv.Index(i)); err != nil {
			return err
		}
	}
	io.WriteString(e.w, ";")
	return nil
}

func (e *encoder) encodeMap(rv reflect.Value) error {
	if rv.IsNil() {
		e.writeTag("n")
		return nil
	}
	if err := e.enter(rv.Pointer()); err != nil {
		return err
	}
	defer e.leave(rv.Pointer())

	type pair struct{ k, v []byte }
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		var kb, vb bytes.Buffer
		ke := encoder{w: &kb, seen: e.seen}
		if err := ke.encodeValue(iter.Key()); err != nil {
			return err
		}
		ve := encoder{w: &vb, seen: e.seen}
		if err := ve.encodeValue(iter.Value()); err != nil {
			return err
		}
		pairs = append(pairs, pair{kb.Bytes(), vb.Bytes()})
	}
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].k, pairs[j].k) < 0 })
	io.WriteString(e.w, "m:")
	for _, p := range pairs {
		e.w.Write(p.k)
		e.w.Write(p.v)
	}
	io.WriteString(e.w, ";")
	return nil
}

func (e *encoder) encodeStruct(rv reflect.Value) error {
	if t, ok := rv.Interface().(time.Time); ok {
		fmt.Fprintf(e.w, "t:%d;", t.UnixNano())
		return nil
	}
	// Opaque structured values are delegated to hashstructure, which walks
	// exported fields with stable ordering.
	h, err := hashstructure.Hash(rv.Interface(), hashstructure.FormatV2, nil)
	if err != nil {
		return errors.Wrapf(ErrUnhashable, "value of type %s: %v", rv.Type(), err)
	}
	fmt.Fprintf(e.w, "o:%x;", h)
	return nil
}

func (e *encoder) enter(p uintptr) error {
	if e.seen == nil {
		e.seen = make(map[uintptr]struct{})
	}
	if _, ok := e.seen[p]; ok {
		return errors.Wrap(ErrUnhashable, "cyclic value")
	}
	e.seen[p] = struct{}{}
	return nil
}

func (e *encoder) leave(p uintptr) {
	delete(e.seen, p)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
