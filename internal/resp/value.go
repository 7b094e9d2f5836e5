package resp

import (
	"fmt"
	"strconv"
)

// Kind — тип кадра, совпадает с его первым байтом.
type Kind byte

const (
	KindSimple  Kind = '+'
	KindError   Kind = '-'
	KindInteger Kind = ':'
	KindBulk    Kind = '$'
	KindArray   Kind = '*'
)

// Value — разобранный кадр.
type Value struct {
	Kind  Kind
	Str   string  // для '+' и '-'
	Int   int64   // для ':'
	Bulk  []byte  // для '$'
	Array []Value // для '*'

	// Null — $-1 или *-1.
	Null bool
}

// Simple создаёт простую строку.
func Simple(s string) Value { return Value{Kind: KindSimple, Str: s} }

// OK — стандартный ответ "+OK".
func OK() Value { return Simple("OK") }

// Errorf создаёт ответ-ошибку. Первое слово — код.
func Errorf(code, format string, args ...any) Value {
	return Value{Kind: KindError, Str: code + " " + fmt.Sprintf(format, args...)}
}

// Integer создаёт целое.
func Integer(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// Bulk создаёт bulk-строку.
func Bulk(b []byte) Value { return Value{Kind: KindBulk, Bulk: b} }

// BulkString создаёт bulk-строку из string.
func BulkString(s string) Value { return Bulk([]byte(s)) }

// NullBulk создаёт $-1.
func NullBulk() Value { return Value{Kind: KindBulk, Null: true} }

// Err возвращает *Error для ответа '-' и nil для остальных.
func (v Value) Err() error {
	if v.Kind == KindError {
		return &Error{Message: v.Str}
	}
	return nil
}

// Text возвращает текстовое содержимое простой строки или bulk.
func (v Value) Text() (string, error) {
	switch v.Kind {
	case KindSimple:
		return v.Str, nil
	case KindBulk:
		if v.Null {
			return "", fmt.Errorf("%w: null bulk", ErrUnexpectedReply)
		}
		return string(v.Bulk), nil
	case KindInteger:
		return strconv.FormatInt(v.Int, 10), nil
	case KindError:
		return "", v.Err()
	default:
		return "", fmt.Errorf("%w: %c", ErrUnexpectedReply, v.Kind)
	}
}

// String — для логов и отладки.
func (v Value) String() string {
	switch v.Kind {
	case KindSimple, KindError:
		return string(v.Kind) + v.Str
	case KindInteger:
		return ":" + strconv.FormatInt(v.Int, 10)
	case KindBulk:
		if v.Null {
			return "$-1"
		}
		return strconv.Quote(string(v.Bulk))
	case KindArray:
		return fmt.Sprintf("*%d", len(v.Array))
	default:
		return "?"
	}
}
