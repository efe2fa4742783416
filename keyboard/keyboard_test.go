package keyboard

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestUnselectedColumnsReadAllOnes(t *testing.T) {
	k := New()
	k.SetColumns(0xff) // no column selected
	k.OnKeyDown(sdl.SCANCODE_A)
	if got := k.GetRows(); got != 0xff {
		t.Errorf("GetRows() with no column selected = %#02x, want 0xff", got)
	}
}

func TestKeyDownPullsItsRowLow(t *testing.T) {
	k := New()
	k.OnKeyDown(sdl.SCANCODE_A) // row 2, column 1 per the reference matrix
	k.SetColumns(0xfd)          // select column 1 only (bit 1 clear)
	got := k.GetRows()
	if got&(1<<2) != 0 {
		t.Errorf("GetRows() = %#02x, want bit 2 clear while A is held", got)
	}
}

func TestKeyUpReleasesRow(t *testing.T) {
	k := New()
	k.OnKeyDown(sdl.SCANCODE_A)
	k.OnKeyUp(sdl.SCANCODE_A)
	k.SetColumns(0xfd)
	if got := k.GetRows(); got != 0xff {
		t.Errorf("GetRows() after release = %#02x, want 0xff", got)
	}
}

func TestUnmappedScancodeIsIgnored(t *testing.T) {
	k := New()
	k.OnKeyDown(sdl.SCANCODE_KP_0) // not in the C64 matrix
	k.SetColumns(0x00)
	if got := k.GetRows(); got != 0xff {
		t.Errorf("GetRows() after unmapped key = %#02x, want 0xff (no-op)", got)
	}
}

func TestResetReleasesAllKeys(t *testing.T) {
	k := New()
	k.OnKeyDown(sdl.SCANCODE_A)
	k.OnKeyDown(sdl.SCANCODE_SPACE)
	k.Reset()
	k.SetColumns(0x00)
	if got := k.GetRows(); got != 0xff {
		t.Errorf("GetRows() after Reset = %#02x, want 0xff", got)
	}
}
