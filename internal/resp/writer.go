package resp

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Writer пишет кадры в буфер; Flush отправляет их.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter создаёт Writer поверх w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteCommand пишет команду как массив bulk-строк.
func (w *Writer) WriteCommand(args ...[]byte) error {
	w.writeHeader('*', int64(len(args)))
	for _, arg := range args {
		w.writeBulk(arg)
	}
	return nil
}

// WriteValue пишет произвольный кадр.
func (w *Writer) WriteValue(v Value) error {
	switch v.Kind {
	case KindSimple, KindError:
		w.bw.WriteByte(byte(v.Kind))
		w.bw.WriteString(sanitizeLine(v.Str))
		w.bw.WriteString("\r\n")
	case KindInteger:
		w.writeHeader(':', v.Int)
	case KindBulk:
		if v.Null {
			w.bw.WriteString("$-1\r\n")
			return nil
		}
		w.writeBulk(v.Bulk)
	case KindArray:
		if v.Null {
			w.bw.WriteString("*-1\r\n")
			return nil
		}
		w.writeHeader('*', int64(len(v.Array)))
		for _, item := range v.Array {
			if err := w.WriteValue(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush отправляет буфер.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

func (w *Writer) writeHeader(prefix byte, n int64) {
	w.bw.WriteByte(prefix)
	w.bw.WriteString(strconv.FormatInt(n, 10))
	w.bw.WriteString("\r\n")
}

func (w *Writer) writeBulk(b []byte) {
	w.writeHeader('$', int64(len(b)))
	w.bw.Write(b)
	w.bw.WriteString("\r\n")
}

// sanitizeLine убирает CR/LF, которые сломали бы однострочный кадр.
func sanitizeLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
