package resp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// MaxBulkLen — предел длины bulk-строки.
	MaxBulkLen = 64 << 20

	// MaxArrayLen — предел числа элементов массива.
	MaxArrayLen = 1 << 16
)

// Reader разбирает кадры из потока.
type Reader struct {
	br *bufio.Reader
}

// NewReader создаёт Reader поверх r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadValue читает один кадр любого типа.
func (r *Reader) ReadValue() (Value, error) {
	prefix, err := r.br.ReadByte()
	if err != nil {
		return Value{}, err
	}

	switch Kind(prefix) {
	case KindSimple, KindError:
		line, err := r.readLine()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: Kind(prefix), Str: line}, nil

	case KindInteger:
		n, err := r.readInt()
		if err != nil {
			return Value{}, err
		}
		return Integer(n), nil

	case KindBulk:
		return r.readBulk()

	case KindArray:
		n, err := r.readInt()
		if err != nil {
			return Value{}, err
		}
		if n == -1 {
			return Value{Kind: KindArray, Null: true}, nil
		}
		if n < 0 || n > MaxArrayLen {
			return Value{}, fmt.Errorf("%w: array length %d", ErrProtocol, n)
		}
		items := make([]Value, 0, n)
		for i := int64(0); i < n; i++ {
			item, err := r.ReadValue()
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Value{Kind: KindArray, Array: items}, nil

	default:
		return Value{}, fmt.Errorf("%w: unexpected prefix %q", ErrProtocol, prefix)
	}
}

// ReadReply читает ответ сервера. '-' превращается в *Error,
// остальные допустимые ответы ('+', '$', ':') возвращаются как Value.
func (r *Reader) ReadReply() (Value, error) {
	v, err := r.ReadValue()
	if err != nil {
		return Value{}, err
	}
	switch v.Kind {
	case KindError:
		return Value{}, v.Err()
	case KindSimple:
		v.Str = strings.TrimSpace(v.Str)
		return v, nil
	case KindBulk, KindInteger:
		return v, nil
	default:
		return Value{}, fmt.Errorf("%w: unexpected reply %c", ErrProtocol, v.Kind)
	}
}

// ReadCommand читает команду: непустой массив bulk-строк.
func (r *Reader) ReadCommand() ([][]byte, error) {
	v, err := r.ReadValue()
	if err != nil {
		return nil, err
	}
	if v.Kind != KindArray || v.Null || len(v.Array) == 0 {
		return nil, fmt.Errorf("%w: command must be a non-empty array", ErrProtocol)
	}

	args := make([][]byte, len(v.Array))
	for i, item := range v.Array {
		if item.Kind != KindBulk || item.Null {
			return nil, fmt.Errorf("%w: command argument %d is not a bulk string", ErrProtocol, i)
		}
		args[i] = item.Bulk
	}
	return args, nil
}

func (r *Reader) readBulk() (Value, error) {
	n, err := r.readInt()
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return NullBulk(), nil
	}
	if n < 0 || n > MaxBulkLen {
		return Value{}, fmt.Errorf("%w: bulk length %d", ErrProtocol, n)
	}

	buf := make([]byte, n+2)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return Value{}, err
	}
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return Value{}, fmt.Errorf("%w: bulk not terminated by CRLF", ErrProtocol)
	}
	return Bulk(buf[:n]), nil
}

// readLine читает строку до CRLF (без терминатора).
func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		return "", err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", fmt.Errorf("%w: line not terminated by CRLF", ErrProtocol)
	}
	return line[:len(line)-2], nil
}

func (r *Reader) readInt() (int64, error) {
	line, err := r.readLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad integer %q", ErrProtocol, line)
	}
	return n, nil
}
