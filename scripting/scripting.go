// Package scripting runs user-supplied JavaScript over the final
// Markdown. A script defines transform(markdown, stats) and returns
// the replacement text; anything else leaves the document untouched.
package scripting

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"glyphmark/docstats"
)

// Engine executes a document transform script.
type Engine interface {
	Transform(ctx context.Context, script, markdown string, stats docstats.DocumentStats) (string, error)
}

// GojaEngine is the JavaScript implementation of Engine.
type GojaEngine struct {
	vm *goja.Runtime
}

// NewEngine constructs a fresh runtime.
func NewEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

// Transform evaluates the script, looks up its transform function, and
// applies it to the document. The runtime is interrupted if ctx is
// cancelled mid-script.
func (e *GojaEngine) Transform(ctx context.Context, script, markdown string, stats docstats.DocumentStats) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	if _, err := e.vm.RunString(script); err != nil {
		return "", unwrapInterrupt(err)
	}

	fn, ok := goja.AssertFunction(e.vm.Get("transform"))
	if !ok {
		return "", fmt.Errorf("script does not define transform(markdown, stats)")
	}

	statsObj := e.vm.NewObject()
	_ = statsObj.Set("wordCount", stats.WordCount)
	_ = statsObj.Set("headingCount", stats.HeadingCount)
	_ = statsObj.Set("tableCount", stats.TableCount)
	_ = statsObj.Set("listItemCount", stats.ListItemCount)
	_ = statsObj.Set("imageCount", stats.ImageCount)
	_ = statsObj.Set("pageCount", stats.PageCount)

	val, err := fn(goja.Undefined(), e.vm.ToValue(markdown), statsObj)
	if err != nil {
		return "", unwrapInterrupt(err)
	}
	if goja.IsUndefined(val) || goja.IsNull(val) {
		return markdown, nil
	}
	return val.String(), nil
}

func unwrapInterrupt(err error) error {
	if interrupted, ok := err.(*goja.InterruptedError); ok {
		if cause := interrupted.Unwrap(); cause != nil {
			return cause
		}
		return context.Canceled
	}
	return err
}
