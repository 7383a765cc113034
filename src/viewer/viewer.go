// Package viewer shows rendered charts one at a time in a fyne window.
//
// The fyne event loop must own the calling goroutine, so Run starts the app there and
// hands a blocking render.Viewer to the work function, which runs on its own goroutine.
package viewer

import (
	"context"
	"errors"
	"image"
	"sync"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/Blakeline-was-taken/prog-avancee/src/logging"
	"github.com/Blakeline-was-taken/prog-avancee/src/render"
)

// AppID identifies the viewer for fyne preferences.
const AppID = "com.progavancee.scalaplot"

// ErrClosed is returned by Show once the user has closed the window.
var ErrClosed = errors.New("viewer closed")

// window is a render.Viewer backed by a single reusable fyne window.
type window struct {
	w         fyne.Window
	img       *canvas.Image
	dismissed chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
	waiting   bool
}

func newWindow(a fyne.App) *window {
	v := &window{dismissed: make(chan struct{}, 1), closed: make(chan struct{})}
	v.w = a.NewWindow("scalaplot")
	v.img = canvas.NewImageFromImage(nil)
	v.img.FillMode = canvas.ImageFillContain
	v.img.SetMinSize(fyne.NewSize(render.DefaultWidth, render.DefaultHeight))
	next := widget.NewButton("Suivant", v.dismiss)
	v.w.SetContent(container.NewBorder(nil, next, nil, nil, v.img))
	// "Suivant" moves on; closing the window stops the run.
	v.w.SetCloseIntercept(v.close)
	return v
}

func (v *window) close() {
	v.closeOnce.Do(func() {
		v.w.Hide()
		close(v.closed)
	})
}

func (v *window) dismiss() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.waiting {
		return
	}
	v.waiting = false
	select {
	case v.dismissed <- struct{}{}:
	default:
	}
}

// Show displays img and blocks until the user clicks "Suivant". It returns ErrClosed
// when the window has been closed.
func (v *window) Show(ctx context.Context, title string, img image.Image) error {
	select {
	case <-v.closed:
		return ErrClosed
	default:
	}
	v.mu.Lock()
	v.waiting = true
	v.mu.Unlock()
	fyne.Do(func() {
		v.w.SetTitle(title)
		v.img.Image = img
		v.img.Refresh()
		v.w.Show()
		v.w.RequestFocus()
	})
	logging.Debugf("[viewer] showing %q", title)
	select {
	case <-v.dismissed:
		return nil
	case <-v.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts a fyne app on the calling goroutine and runs work with an interactive viewer.
// The app quits once work returns, and Run returns work's error. Closing the window makes
// the pending or next Show fail with ErrClosed. If the app stops for any other reason,
// work's context is cancelled.
func Run(ctx context.Context, work func(context.Context, render.Viewer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a := app.NewWithID(AppID)
	v := newWindow(a)
	errCh := make(chan error, 1)
	a.Lifecycle().SetOnStarted(func() {
		go func() {
			errCh <- work(ctx, v)
			fyne.Do(a.Quit)
		}()
	})
	a.Run()
	cancel()
	return <-errCh
}
