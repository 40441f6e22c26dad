// Package ioncodec is the driver's single seam to the Ion serialization
// library. It copies one value at a time between readers and writers,
// preserving annotations, field names, and container order, so the text
// corpus, the binary corpus, and the report all re-render values through
// the same choke point.
package ioncodec

import (
	"bytes"
	"fmt"

	"github.com/amazon-ion/ion-go/ion"
)

// Transcode copies the value the reader is currently positioned on to w.
// The caller must already have advanced the reader with Next. Annotation
// order is preserved exactly; it is semantically significant.
func Transcode(r ion.Reader, w ion.Writer) error {
	annots, err := r.Annotations()
	if err != nil {
		return err
	}
	if len(annots) > 0 {
		if err := w.Annotations(annots...); err != nil {
			return err
		}
	}

	if r.IsNull() {
		return w.WriteNullType(r.Type())
	}

	switch r.Type() {
	case ion.NullType:
		return w.WriteNull()
	case ion.BoolType:
		v, err := r.BoolValue()
		if err != nil {
			return err
		}
		return w.WriteBool(*v)
	case ion.IntType:
		return transcodeInt(r, w)
	case ion.FloatType:
		v, err := r.FloatValue()
		if err != nil {
			return err
		}
		return w.WriteFloat(*v)
	case ion.DecimalType:
		v, err := r.DecimalValue()
		if err != nil {
			return err
		}
		return w.WriteDecimal(v)
	case ion.TimestampType:
		v, err := r.TimestampValue()
		if err != nil {
			return err
		}
		return w.WriteTimestamp(*v)
	case ion.SymbolType:
		v, err := r.SymbolValue()
		if err != nil {
			return err
		}
		return w.WriteSymbol(*v)
	case ion.StringType:
		v, err := r.StringValue()
		if err != nil {
			return err
		}
		return w.WriteString(*v)
	case ion.ClobType:
		v, err := r.ByteValue()
		if err != nil {
			return err
		}
		return w.WriteClob(v)
	case ion.BlobType:
		v, err := r.ByteValue()
		if err != nil {
			return err
		}
		return w.WriteBlob(v)
	case ion.ListType:
		return transcodeContainer(r, w, w.BeginList, w.EndList)
	case ion.SexpType:
		return transcodeContainer(r, w, w.BeginSexp, w.EndSexp)
	case ion.StructType:
		return transcodeStruct(r, w)
	default:
		return fmt.Errorf("ioncodec: unsupported value type %v", r.Type())
	}
}

func transcodeInt(r ion.Reader, w ion.Writer) error {
	size, err := r.IntSize()
	if err != nil {
		return err
	}
	if size == ion.BigInt {
		v, err := r.BigIntValue()
		if err != nil {
			return err
		}
		return w.WriteBigInt(v)
	}
	v, err := r.Int64Value()
	if err != nil {
		return err
	}
	return w.WriteInt(*v)
}

func transcodeContainer(r ion.Reader, w ion.Writer, begin, end func() error) error {
	if err := r.StepIn(); err != nil {
		return err
	}
	if err := begin(); err != nil {
		return err
	}
	for r.Next() {
		if err := Transcode(r, w); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if err := end(); err != nil {
		return err
	}
	return r.StepOut()
}

func transcodeStruct(r ion.Reader, w ion.Writer) error {
	if err := r.StepIn(); err != nil {
		return err
	}
	if err := w.BeginStruct(); err != nil {
		return err
	}
	for r.Next() {
		name, err := r.FieldName()
		if err != nil {
			return err
		}
		if name == nil {
			return fmt.Errorf("ioncodec: struct field with no name")
		}
		if err := w.FieldName(*name); err != nil {
			return err
		}
		if err := Transcode(r, w); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if err := w.EndStruct(); err != nil {
		return err
	}
	return r.StepOut()
}

// TextForValue renders the current value as canonical text with no version
// marker and no trailing newline.
func TextForValue(r ion.Reader) (string, error) {
	var buf bytes.Buffer
	w := ion.NewTextWriterOpts(&buf, ion.TextWriterQuietFinish)
	if err := Transcode(r, w); err != nil {
		return "", err
	}
	if err := w.Finish(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BinaryFromText re-encodes one Ion text value in canonical binary form,
// version marker included.
func BinaryFromText(text string) ([]byte, error) {
	r := ion.NewReaderString(text)
	if !r.Next() {
		if err := r.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("ioncodec: no value in %q", text)
	}
	var buf bytes.Buffer
	w := ion.NewBinaryWriter(&buf)
	if err := Transcode(r, w); err != nil {
		return nil, err
	}
	if err := w.Finish(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BinaryString encodes s as one Ion string value in canonical binary form.
func BinaryString(s string) ([]byte, error) {
	var buf bytes.Buffer
	w := ion.NewBinaryWriter(&buf)
	if err := w.WriteString(s); err != nil {
		return nil, err
	}
	if err := w.Finish(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
