package viewer

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
)

func TestShowWaitsForDismiss(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newWindow(a)
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	done := make(chan error, 1)
	go func() { done <- v.Show(context.Background(), "chart", img) }()

	deadline := time.After(5 * time.Second)
	for {
		v.dismiss()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("show: %v", err)
			}
			if v.img.Image != img {
				t.Fatalf("image not set on canvas")
			}
			return
		case <-deadline:
			t.Fatalf("Show did not return after dismiss")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestShowReturnsOnCancel(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newWindow(a)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := v.Show(ctx, "chart", image.NewRGBA(image.Rect(0, 0, 1, 1))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
}

func TestDismissWithoutShowIsIgnored(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newWindow(a)
	v.dismiss()
	select {
	case <-v.dismissed:
		t.Fatalf("dismiss outside Show must not queue a signal")
	default:
	}
}

func TestCloseStopsShow(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	v := newWindow(a)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	done := make(chan error, 1)
	go func() { done <- v.Show(context.Background(), "chart", img) }()
	v.close()
	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Show did not return after close")
	}

	v.close()
	if err := v.Show(context.Background(), "next", img); !errors.Is(err, ErrClosed) {
		t.Fatalf("Show after close should fail fast, got %v", err)
	}
}
