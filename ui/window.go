// Package ui shows the frames produced by the emulator in an OpenGL window.
//
// All SDL and OpenGL calls are made on the main thread through sdl.Do, so the
// program must run inside sdl.Main.
package ui

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"nescore/emu"
	"nescore/emu/log"
)

// Window is an emu.Output presenting frames in an SDL window, scaled to its
// size.
type Window struct {
	*sdl.Window
	prog    uint32
	texture uint32
	vao     uint32
	context sdl.GLContext

	texw, texh int32
}

// NewWindow creates an OpenGL window holding a texture of size (texw, texh).
// The window is initially scaled by cfg.Scale.
func NewWindow(title string, texw, texh int, cfg emu.VideoConfig) (*Window, error) {
	type result struct {
		w   *Window
		err error
	}
	resc := make(chan result, 1)
	sdl.Do(func() {
		w, err := newWindow(title, texw, texh, cfg)
		resc <- result{w, err}
	})
	res := <-resc
	return res.w, res.err
}

func newWindow(title string, texw, texh int, cfg emu.VideoConfig) (_ *Window, err error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL: %s", err)
	}

	// Resources acquired so far, released if initialization fails.
	var undo teardown
	defer func() {
		if err != nil {
			undo.run()
		}
	}()
	undo.push(sdl.Quit)

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	winw := int32(texw * cfg.Scale)
	winh := int32(texh * cfg.Scale)
	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		winw, winh,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %s", err)
	}
	undo.push(func() { w.Destroy() })

	context, err := w.GLCreateContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL context: %s", err)
	}
	undo.push(func() { sdl.GLDeleteContext(context) })

	interval := 1
	if cfg.DisableVSync {
		interval = 0
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.ModEmu.WarnZ("failed to set swap interval").Error("err", err).End()
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize opengl: %s", err)
	}

	// Empty texture, filled by each frame.
	tbuf := make([]byte, texw*texh*4)

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(texw), int32(texh), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&tbuf[0]))

	fragSource := fragmentShaderSource
	if cfg.Shader == emu.ShaderCRT {
		fragSource = crtFragmentShaderSource
	}

	vert, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("vertex shader compilation: %s", err)
	}
	frag, err := compileShader(fragSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("fragment shader compilation: %s", err)
	}
	prog, err := linkProgram(vert, frag)
	if err != nil {
		return nil, fmt.Errorf("shader program link: %s", err)
	}

	var VBO, VAO, EBO uint32
	gl.GenVertexArrays(1, &VAO)
	gl.GenBuffers(1, &VBO)
	gl.GenBuffers(1, &EBO)

	gl.BindVertexArray(VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	// Position attributes.
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)

	// Texture coordinate attributes.
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	log.ModEmu.InfoZ("window created").
		Int("width", int(winw)).
		Int("height", int(winh)).
		String("shader", cfg.Shader).
		End()

	return &Window{
		Window:  w,
		prog:    prog,
		texture: texture,
		vao:     VAO,
		context: context,
		texw:    int32(texw),
		texh:    int32(texh),
	}, nil
}

// Present uploads frame into the texture and draws it.
func (w *Window) Present(frame *image.RGBA) error {
	if int32(frame.Rect.Dx()) != w.texw || int32(frame.Rect.Dy()) != w.texh {
		return fmt.Errorf("frame size %v doesn't match window texture %dx%d", frame.Rect.Size(), w.texw, w.texh)
	}

	sdl.Do(func() {
		dw, dh := w.GLGetDrawableSize()
		gl.Viewport(0, 0, dw, dh)
		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		gl.UseProgram(w.prog)
		gl.BindTexture(gl.TEXTURE_2D, w.texture)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w.texw, w.texh, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&frame.Pix[0]))

		gl.BindVertexArray(w.vao)
		gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_INT, nil)
		gl.BindVertexArray(0)

		w.GLSwap()
	})
	return nil
}

// Poll processes pending window events. It returns false once the window has
// been closed or Escape has been pressed.
func (w *Window) Poll() bool {
	running := true
	sdl.Do(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if event.Type == sdl.KEYDOWN && event.Keysym.Sym == sdl.K_ESCAPE {
					running = false
				}
			}
		}
	})
	return running
}

func (w *Window) Close() error {
	errc := make(chan error, 1)
	sdl.Do(func() {
		if w.context != nil {
			sdl.GLDeleteContext(w.context)
		}
		err := w.Destroy()
		sdl.Quit()
		errc <- err
	})
	return <-errc
}

// teardown is a stack of release functions.
type teardown []func()

func (t *teardown) push(f func()) { *t = append(*t, f) }

// run calls the release functions in reverse order and empties the stack.
func (t *teardown) run() {
	for i := len(*t) - 1; i >= 0; i-- {
		(*t)[i]()
	}
	*t = nil
}

// Columns are position and texture coordinates.
// Rows are the quad vertices in clockwise order.
var vertices = []float32{
	// x, y, z, s, t
	1.0, 1.0, 0, 1, 0, // top right
	1.0, -1.0, 0, 1, 1, // bottom right
	-1.0, -1.0, 0, 0, 1, // bottom left
	-1.0, 1.0, 0, 0, 0, // top left
}

var indices = []uint32{
	0, 1, 3,
	1, 2, 3,
}
