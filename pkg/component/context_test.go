package component

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eghact/eghact/internal/errors"
	"github.com/eghact/eghact/pkg/dom"
	"github.com/eghact/eghact/pkg/vdom"
)

func TestContextProvideRerendersSubscribers(t *testing.T) {
	theme := CreateContext("light")
	defer theme.Release()

	renders := 0
	def := Closure("Themed", func(vdom.Props) *vdom.VNode {
		renders++
		return vdom.H("div", vdom.Props{"class": UseContext(theme)})
	})

	app := Bootstrap(def, dom.NewElement("main"))
	app.Mount()
	assert.Equal(t, `<div class="light"></div>`, app.HTML())
	assert.Equal(t, 1, theme.Subscribers())

	Provide(theme, "dark")
	assert.Equal(t, `<div class="dark"></div>`, app.HTML())
	assert.Equal(t, 2, renders)

	Provide(theme, "dark")
	assert.Equal(t, 3, renders, "provide forces a render even when the value is unchanged")

	app.Unmount()
	assert.Equal(t, 0, theme.Subscribers())
	Provide(theme, "light")
	assert.Equal(t, 3, renders)
}

func TestContextDefaultAndValue(t *testing.T) {
	count := CreateContext(1)
	defer count.Release()

	assert.Equal(t, 1, count.Default())
	Provide(count, 7)
	assert.Equal(t, 7, count.Value())
	assert.Equal(t, 1, count.Default())
}

func TestContextValueIsNotTracked(t *testing.T) {
	ctx := CreateContext("a")
	defer ctx.Release()

	def := Closure("Peek", func(vdom.Props) *vdom.VNode {
		return vdom.Text(ctx.Value())
	})
	app := Bootstrap(def, dom.NewElement("main"))
	app.Mount()

	Provide(ctx, "b")
	assert.Equal(t, "a", app.HTML())
	assert.Equal(t, 0, ctx.Subscribers())
}

func TestReleasedContextPanics(t *testing.T) {
	ctx := CreateContext(0)
	ctx.Release()
	ctx.Release()

	assert.Equal(t, errors.CodeUnknownContext, panicCode(func() { Provide(ctx, 1) }))
	assert.Equal(t, errors.CodeUnknownContext, panicCode(func() { ctx.Value() }))
	assert.Equal(t, errors.CodeUnknownContext, panicCode(func() { ctx.Subscribers() }))
}

func TestUseReleasedContextDuringRenderPanics(t *testing.T) {
	ctx := CreateContext("x")
	ctx.Release()

	def := Closure("Orphan", func(vdom.Props) *vdom.VNode {
		return vdom.Text(UseContext(ctx))
	})
	app := Bootstrap(def, dom.NewElement("main"))
	assert.Equal(t, errors.CodeUnknownContext, panicCode(app.Mount))
}

func TestContextOnlyRerendersSubscribers(t *testing.T) {
	ctx := CreateContext(0)
	defer ctx.Release()

	var subscriberRenders, otherRenders int
	sub := Define("Sub", func(inst *Instance) Renderer {
		return RenderFunc(func() *vdom.VNode {
			subscriberRenders++
			_ = UseContext(ctx)
			return vdom.H("i", nil)
		})
	})
	root := Closure("Root", func(vdom.Props) *vdom.VNode {
		otherRenders++
		return vdom.H("div", nil, sub.Node(nil))
	})

	app := Bootstrap(root, dom.NewElement("main"))
	app.Mount()
	Provide(ctx, 1)
	assert.Equal(t, 2, subscriberRenders)
	assert.Equal(t, 1, otherRenders)
}

func TestContextSwapAtSlot(t *testing.T) {
	theme := CreateContext("light")
	defer theme.Release()
	size := CreateContext("small")
	defer size.Release()

	newApp := func(debug bool) (*App, func(bool)) {
		var setFlag func(bool)
		def := Closure("Swapped", func(vdom.Props) *vdom.VNode {
			flag, set := UseState(false)
			setFlag = set
			c := theme
			if flag {
				c = size
			}
			return vdom.Text(UseContext(c))
		})
		app := Bootstrap(def, dom.NewElement("main"), WithDebug(debug))
		app.Mount()
		return app, setFlag
	}

	t.Run("debug", func(t *testing.T) {
		_, setFlag := newApp(true)
		assert.Equal(t, errors.CodeHookOrderChanged, panicCode(func() { setFlag(true) }))
	})

	t.Run("unchecked", func(t *testing.T) {
		app, setFlag := newApp(false)
		defer app.Unmount()
		assert.NotPanics(t, func() { setFlag(true) })
		assert.Equal(t, "small", app.HTML())
	})
}
