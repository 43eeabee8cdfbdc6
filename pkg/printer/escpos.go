package printer

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	escByte = 0x1B
	gsByte  = 0x1D
	lfByte  = 0x0A
)

// Alignment values for SetAlign.
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Character size values for SetFontSize. Double combines double width and
// double height.
const (
	FontNormal byte = 0x00
	FontDouble byte = 0x11
	FontWide   byte = 0x10
	FontTall   byte = 0x01
)

// Document accumulates an ESC/POS byte stream for a closing slip. Width is
// the paper width in characters: 32 on 58mm stock, 48 on 80mm.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a document for the given character width, emitting the
// printer initialize command first.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.buf.Write([]byte{escByte, '@'})
	return d
}

// LineFeed advances one line.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(lfByte)
	return d
}

// FeedLines advances n lines.
func (d *Document) FeedLines(n int) *Document {
	for ; n > 0; n-- {
		d.buf.WriteByte(lfByte)
	}
	return d
}

// SetAlign selects the alignment for following text.
func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{escByte, 'a', byte(align)})
	return d
}

// SetBold toggles emphasized text.
func (d *Document) SetBold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{escByte, 'E', b})
	return d
}

// SetFontSize selects the character size for following text.
func (d *Document) SetFontSize(size byte) *Document {
	d.buf.Write([]byte{gsByte, '!', size})
	return d
}

// Text emits one line.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(lfByte)
	return d
}

// TextF emits one formatted line.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	return d.Text(fmt.Sprintf(format, args...))
}

// Separator emits a rule across the full paper width.
func (d *Document) Separator(char byte) *Document {
	return d.Text(strings.Repeat(string(char), d.width))
}

// KeyValue emits a label on the left and its value flush right on the same
// line, the layout every figure on a closing slip uses.
func (d *Document) KeyValue(key, value string) *Document {
	pad := d.width - len(key) - len(value)
	if pad < 1 {
		pad = 1
	}
	d.buf.WriteString(key)
	d.buf.WriteString(strings.Repeat(" ", pad))
	return d.Text(value)
}

// Cut triggers a full paper cut.
func (d *Document) Cut() *Document {
	d.buf.Write([]byte{gsByte, 'V', 0x00})
	return d
}

// PartialCut triggers a partial paper cut.
func (d *Document) PartialCut() *Document {
	d.buf.Write([]byte{gsByte, 'V', 0x01})
	return d
}

// Bytes returns the accumulated stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}
