package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/classilla/tutti/internal/cru"
	"github.com/classilla/tutti/internal/machine"
	"github.com/classilla/tutti/internal/vdp"
)

// host owns the SDL2 window, texture, and audio device the Machine is
// driven through (grounded on the windowed CHIP-8 emulators in the
// retrieval pack: a streaming texture blitted once per frame, and polled
// keyboard events translated into the emulated matrix).
type host struct {
	Machine *machine.Machine

	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	audioDev sdl.AudioDeviceID

	fb vdp.Framebuffer

	// snapshotPath is the file F6/F9 save to and load from; empty disables
	// both shortcuts.
	snapshotPath string
}

func newHost(scale int) (*host, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, err
	}

	w := int32(vdp.ScreenWidth * scale)
	h := int32(vdp.ScreenHeight * scale)

	window, err := sdl.CreateWindow("Tomy Tutor", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, w, h, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, err
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_STREAMING, vdp.ScreenWidth, vdp.ScreenHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, err
	}

	spec := &sdl.AudioSpec{
		Freq:     machine.SampleRate,
		Format:   sdl.AUDIO_F32SYS,
		Channels: 1,
		Samples:  machine.SamplesPerFrame,
	}
	audioDev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		texture.Destroy()
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, err
	}
	sdl.PauseAudioDevice(audioDev, false)

	return &host{
		Machine:  machine.New(),
		window:   window,
		renderer: renderer,
		texture:  texture,
		audioDev: audioDev,
	}, nil
}

// Close tears down SDL2 resources in reverse acquisition order.
func (h *host) Close() {
	sdl.CloseAudioDevice(h.audioDev)
	h.texture.Destroy()
	h.renderer.Destroy()
	h.window.Destroy()
	sdl.Quit()
}

// Run drives the frame loop until the window is closed or Escape is
// pressed, polling input once per frame and blitting the rendered
// framebuffer plus queuing that frame's audio samples.
func (h *host) Run() error {
	for {
		if h.pollInput() {
			return nil
		}

		h.Machine.RunFrame(&h.fb)

		if err := h.blit(); err != nil {
			return err
		}
		h.queueAudio()
	}
}

// pollInput drains the SDL event queue, updating the keyboard matrix and
// handling the emulator-level shortcuts; it returns true if the host
// should quit.
func (h *host) pollInput() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			return true
		case *sdl.KeyboardEvent:
			pressed := e.Type == sdl.KEYDOWN
			switch e.Keysym.Sym {
			case sdl.K_ESCAPE:
				if pressed {
					return true
				}
			case sdl.K_F5:
				if pressed {
					h.Machine.Reset()
				}
			case sdl.K_F6:
				if pressed {
					h.saveSnapshot()
				}
			case sdl.K_F9:
				if pressed {
					h.loadSnapshot()
				}
			default:
				if id, ok := sdlKeyMap[e.Keysym.Sym]; ok {
					h.Machine.SetKey(id, pressed)
				}
			}
		}
	}
	return false
}

// saveSnapshot writes the Machine's current state to snapshotPath, logging
// rather than aborting the run on failure.
func (h *host) saveSnapshot() {
	if h.snapshotPath == "" {
		return
	}
	data, err := h.Machine.Save()
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot save failed: %v\n", err)
		return
	}
	if err := os.WriteFile(h.snapshotPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "snapshot save failed: %v\n", err)
		return
	}
	fmt.Printf("snapshot saved to %s\n", h.snapshotPath)
}

// loadSnapshot restores the Machine's state from snapshotPath.
func (h *host) loadSnapshot() {
	if h.snapshotPath == "" {
		return
	}
	data, err := os.ReadFile(h.snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot load failed: %v\n", err)
		return
	}
	if err := h.Machine.Load(data); err != nil {
		fmt.Fprintf(os.Stderr, "snapshot load failed: %v\n", err)
		return
	}
	fmt.Printf("snapshot loaded from %s\n", h.snapshotPath)
}

// blit uploads the rendered framebuffer to the streaming texture and
// presents it.
func (h *host) blit() error {
	pixels, pitch, err := h.texture.Lock(nil)
	if err != nil {
		return fmt.Errorf("locking texture: %w", err)
	}
	for y := 0; y < vdp.ScreenHeight; y++ {
		row := unsafe.Slice((*uint32)(unsafe.Pointer(&pixels[y*pitch])), vdp.ScreenWidth)
		for x := 0; x < vdp.ScreenWidth; x++ {
			c := h.fb[y][x]
			row[x] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	h.texture.Unlock()

	h.renderer.Clear()
	h.renderer.Copy(h.texture, nil, nil)
	h.renderer.Present()
	return nil
}

// queueAudio submits this frame's generated samples to the open device.
func (h *host) queueAudio() {
	buf := h.Machine.AudioBuffer[:]
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*4)
	sdl.QueueAudio(h.audioDev, bytes)
}

// sdlKeyMap maps host keycodes onto the Tutor's physical keys.
var sdlKeyMap = map[sdl.Keycode]cru.KeyID{
	sdl.K_1: cru.Key1, sdl.K_2: cru.Key2, sdl.K_3: cru.Key3, sdl.K_4: cru.Key4,
	sdl.K_5: cru.Key5, sdl.K_6: cru.Key6, sdl.K_7: cru.Key7, sdl.K_8: cru.Key8,
	sdl.K_9: cru.Key9, sdl.K_0: cru.Key0,

	sdl.K_q: cru.KeyQ, sdl.K_w: cru.KeyW, sdl.K_e: cru.KeyE, sdl.K_r: cru.KeyR,
	sdl.K_t: cru.KeyT, sdl.K_y: cru.KeyY, sdl.K_u: cru.KeyU, sdl.K_i: cru.KeyI,
	sdl.K_o: cru.KeyO, sdl.K_p: cru.KeyP,

	sdl.K_a: cru.KeyA, sdl.K_s: cru.KeyS, sdl.K_d: cru.KeyD, sdl.K_f: cru.KeyF,
	sdl.K_g: cru.KeyG, sdl.K_h: cru.KeyH, sdl.K_j: cru.KeyJ, sdl.K_k: cru.KeyK,
	sdl.K_l: cru.KeyL,

	sdl.K_z: cru.KeyZ, sdl.K_x: cru.KeyX, sdl.K_c: cru.KeyC, sdl.K_v: cru.KeyV,
	sdl.K_b: cru.KeyB, sdl.K_n: cru.KeyN, sdl.K_m: cru.KeyM,

	sdl.K_MINUS: cru.KeyMinus, sdl.K_EQUALS: cru.KeyEquals,
	sdl.K_BACKQUOTE: cru.KeyBackquote, sdl.K_QUOTE: cru.KeyQuote,
	sdl.K_LEFTBRACKET: cru.KeyLeftBracket, sdl.K_RIGHTBRACKET: cru.KeyRightBracket,
	sdl.K_SEMICOLON: cru.KeySemicolon, sdl.K_COMMA: cru.KeyComma,
	sdl.K_PERIOD: cru.KeyPeriod, sdl.K_SLASH: cru.KeySlash,
	sdl.K_BACKSLASH: cru.KeyBackslash,

	sdl.K_SPACE: cru.KeySpace, sdl.K_RETURN: cru.KeyReturn,
	sdl.K_LSHIFT: cru.KeyShift, sdl.K_RSHIFT: cru.KeyShift,
	sdl.K_CAPSLOCK: cru.KeyCapsLock,
	sdl.K_LCTRL:    cru.KeyCtrl, sdl.K_RCTRL: cru.KeyCtrl,

	sdl.K_LEFT: cru.KeyLeft, sdl.K_UP: cru.KeyUp, sdl.K_DOWN: cru.KeyDown, sdl.K_RIGHT: cru.KeyRight,
}
