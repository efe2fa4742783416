// Package keyboard translates host key events into the C64's 8x8 keyboard
// matrix as seen through CIA1's two ports: the host drives a column strobe
// out and reads back which rows are pulled low.
package keyboard

import "github.com/veandco/go-sdl2/sdl"

// C64 matrix key indices, column-major: index&0x7 is the row, index>>3 is
// the column, matching the reference matrix layout.
const (
	keyDelete = iota
	keyReturn
	keyLeftRight
	keyF7
	keyF1
	keyF3
	keyF5
	keyUpDown
	key3
	keyW
	keyA
	key4
	keyZ
	keyS
	keyE
	keyLeftShift
	key5
	keyR
	keyD
	key6
	keyC
	keyF
	keyT
	keyX
	key7
	keyY
	keyG
	key8
	keyB
	keyH
	keyU
	keyV
	key9
	keyI
	keyJ
	key0
	keyM
	keyK
	keyO
	keyN
	keyPlus
	keyP
	keyL
	keyMinus
	keyPeriod
	keyColon
	keyAt
	keyComma
	keyPound
	keyAsterisk
	keySemicolon
	keyClearHome
	keyRightShift
	keyEqual
	keyUp
	keySlash
	key1
	keyLeft
	keyControl
	key2
	keySpace
	keyCommodore
	keyQ
	keyRunStop
)

// mapping binds host scancodes to C64 matrix keys. Pound, Clear/Home,
// Up-arrow and Run/Stop have no PC keyboard equivalent in the reference
// layout and are left unbound, same as the source (which wires them to
// scancode 0, a value a real key press never reports).
var mapping = map[sdl.Scancode]int{
	sdl.SCANCODE_BACKSPACE:    keyDelete,
	sdl.SCANCODE_RETURN:       keyReturn,
	sdl.SCANCODE_LEFT:         keyLeftRight,
	sdl.SCANCODE_RIGHT:        keyLeftRight,
	sdl.SCANCODE_F7:           keyF7,
	sdl.SCANCODE_F1:           keyF1,
	sdl.SCANCODE_F3:           keyF3,
	sdl.SCANCODE_F5:           keyF5,
	sdl.SCANCODE_UP:           keyUpDown,
	sdl.SCANCODE_DOWN:         keyUpDown,
	sdl.SCANCODE_3:            key3,
	sdl.SCANCODE_W:            keyW,
	sdl.SCANCODE_A:            keyA,
	sdl.SCANCODE_4:            key4,
	sdl.SCANCODE_Z:            keyZ,
	sdl.SCANCODE_S:            keyS,
	sdl.SCANCODE_E:            keyE,
	sdl.SCANCODE_LSHIFT:       keyLeftShift,
	sdl.SCANCODE_5:            key5,
	sdl.SCANCODE_R:            keyR,
	sdl.SCANCODE_D:            keyD,
	sdl.SCANCODE_6:            key6,
	sdl.SCANCODE_C:            keyC,
	sdl.SCANCODE_F:            keyF,
	sdl.SCANCODE_T:            keyT,
	sdl.SCANCODE_X:            keyX,
	sdl.SCANCODE_7:            key7,
	sdl.SCANCODE_Y:            keyY,
	sdl.SCANCODE_G:            keyG,
	sdl.SCANCODE_8:            key8,
	sdl.SCANCODE_B:            keyB,
	sdl.SCANCODE_H:            keyH,
	sdl.SCANCODE_U:            keyU,
	sdl.SCANCODE_V:            keyV,
	sdl.SCANCODE_9:            key9,
	sdl.SCANCODE_I:            keyI,
	sdl.SCANCODE_J:            keyJ,
	sdl.SCANCODE_0:            key0,
	sdl.SCANCODE_M:            keyM,
	sdl.SCANCODE_K:            keyK,
	sdl.SCANCODE_O:            keyO,
	sdl.SCANCODE_N:            keyN,
	sdl.SCANCODE_MINUS:        keyPlus,
	sdl.SCANCODE_P:            keyP,
	sdl.SCANCODE_L:            keyL,
	sdl.SCANCODE_EQUALS:       keyMinus,
	sdl.SCANCODE_PERIOD:       keyPeriod,
	sdl.SCANCODE_SEMICOLON:    keyColon,
	sdl.SCANCODE_LEFTBRACKET:  keyAt,
	sdl.SCANCODE_COMMA:        keyComma,
	sdl.SCANCODE_RIGHTBRACKET: keyAsterisk,
	sdl.SCANCODE_APOSTROPHE:   keySemicolon,
	sdl.SCANCODE_RSHIFT:       keyRightShift,
	sdl.SCANCODE_BACKSLASH:    keyEqual,
	sdl.SCANCODE_SLASH:        keySlash,
	sdl.SCANCODE_1:            key1,
	sdl.SCANCODE_ESCAPE:       keyLeft,
	sdl.SCANCODE_TAB:          keyControl,
	sdl.SCANCODE_2:            key2,
	sdl.SCANCODE_SPACE:        keySpace,
	sdl.SCANCODE_APPLICATION:  keyCommodore,
	sdl.SCANCODE_Q:            keyQ,
}

// Keyboard is the C64 keyboard matrix: an 8-bit column strobe in, 8 rows of
// latched key state out.
type Keyboard struct {
	columns uint8
	rows    [8]uint8
}

// New returns a Keyboard with no keys held.
func New() *Keyboard {
	k := &Keyboard{}
	k.Reset()
	return k
}

// Reset releases every key and clears the column strobe.
func (k *Keyboard) Reset() {
	k.columns = 0
	for i := range k.rows {
		k.rows[i] = 0xff
	}
}

// SetColumns latches the column strobe driven out of CIA1 port A. A 0 bit
// selects that column for the next GetRows read.
func (k *Keyboard) SetColumns(columns uint8) {
	k.columns = columns
}

// GetColumns returns the latched column strobe, read back through CIA1 port
// A when it's configured as an input.
func (k *Keyboard) GetColumns() uint8 {
	return k.columns
}

// GetRows returns the AND of every selected column's row state: a 0 bit
// means that row is held in a selected column.
func (k *Keyboard) GetRows() uint8 {
	value := uint8(0xff)
	for i := 0; i < 8; i++ {
		if k.columns&(1<<uint(i)) == 0 {
			value &= k.rows[i]
		}
	}
	return value
}

// SetRows exists only so CIA1 port B's write path has somewhere to go; row
// state is driven entirely by key events, not by the host writing to it.
func (k *Keyboard) SetRows(uint8) {}

// OnKeyDown marks a host key as pressed, if it maps to a C64 key.
func (k *Keyboard) OnKeyDown(scancode sdl.Scancode) {
	key, ok := mapping[scancode]
	if !ok {
		return
	}
	row := uint8(1) << uint(key&0x7)
	column := key >> 3
	k.rows[column] &^= row
}

// OnKeyUp marks a host key as released, if it maps to a C64 key.
func (k *Keyboard) OnKeyUp(scancode sdl.Scancode) {
	key, ok := mapping[scancode]
	if !ok {
		return
	}
	row := uint8(1) << uint(key&0x7)
	column := key >> 3
	k.rows[column] |= row
}
