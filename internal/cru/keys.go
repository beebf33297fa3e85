package cru

// KeyID names one physical key on the Tutor's keyboard matrix (spec.md
// §4.6, grounded on original_source/tutorem/TMS9995.c's CLA_GetCRUWord
// switch over the eight row base addresses). The joystick function some of
// these keys double as (SL/SR and the arrow cluster) is a host input
// mapping concern, not a second logical key, so only the physical key gets
// an identity here.
type KeyID int

const (
	Key1 KeyID = iota
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyQ
	KeyW
	KeyE
	KeyR
	KeyT
	KeyY
	KeyU
	KeyI
	KeyO
	KeyP
	KeyA
	KeyS
	KeyD
	KeyF
	KeyG
	KeyH
	KeyJ
	KeyK
	KeyL
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
	KeyN
	KeyM
	KeyMinus
	KeyEquals
	KeyBackquote
	KeyQuote
	KeyLeftBracket
	KeyRightBracket
	KeySemicolon
	KeyComma
	KeyPeriod
	KeySlash
	KeyBackslash
	KeySpace
	KeyReturn
	KeyShift
	KeyCapsLock // "Alpha Lock"
	KeyCtrl
	KeyLeft
	KeyUp
	KeyDown
	KeyRight
)

type keyPos struct {
	row uint8
	bit uint8
}

// keyTable maps each key to its (row, bit) position in the 8x8 matrix. Row
// index i corresponds to CRU read address 0xEC00 + i*0x10.
var keyTable = map[KeyID]keyPos{
	Key1: {0, 0}, Key2: {0, 1}, KeyQ: {0, 2}, KeyW: {0, 3},
	KeyA: {0, 4}, KeyS: {0, 5}, KeyZ: {0, 6}, KeyX: {0, 7},

	Key3: {1, 0}, Key4: {1, 1}, KeyE: {1, 2}, KeyR: {1, 3},
	KeyD: {1, 4}, KeyF: {1, 5}, KeyC: {1, 6}, KeyV: {1, 7},

	Key5: {2, 0}, Key6: {2, 1}, KeyT: {2, 2}, KeyY: {2, 3},
	KeyG: {2, 4}, KeyH: {2, 5}, KeyB: {2, 6}, KeyN: {2, 7},

	Key7: {3, 0}, Key8: {3, 1}, Key9: {3, 2}, KeyU: {3, 3},
	KeyI: {3, 4}, KeyJ: {3, 5}, KeyK: {3, 6}, KeyM: {3, 7},

	Key0: {4, 0}, KeyMinus: {4, 1}, KeyO: {4, 2}, KeyP: {4, 3},
	KeyL: {4, 4}, KeySemicolon: {4, 5}, KeyComma: {4, 6}, KeyPeriod: {4, 7},

	KeyEquals: {5, 2}, KeyBackquote: {5, 3}, KeyQuote: {5, 4},
	KeyLeftBracket: {5, 5}, KeySlash: {5, 6}, KeyRightBracket: {5, 7},

	KeyCapsLock: {6, 1}, KeyShift: {6, 2}, KeyBackslash: {6, 3},
	KeyReturn: {6, 4}, KeyCtrl: {6, 6}, KeySpace: {6, 7},

	KeyLeft: {7, 0}, KeyUp: {7, 1}, KeyDown: {7, 2}, KeyRight: {7, 3},
}
