//go:build windows

package overlay

import (
	"fmt"
	"log"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"clickhalo/internal/indicator"
)

// Windows implementation: one small layered popup window per button,
// topmost and click-through, shown/hidden and moved from each snapshot.
// The windows never take focus and never receive input, so the cursor
// keeps working underneath them.

// Windows API constants
const (
	WS_EX_LAYERED     = 0x00080000
	WS_EX_TRANSPARENT = 0x00000020
	WS_EX_TOPMOST     = 0x00000008
	WS_EX_TOOLWINDOW  = 0x00000080
	WS_EX_NOACTIVATE  = 0x08000000
	WS_POPUP          = 0x80000000
	LWA_ALPHA         = 0x00000002
	SW_SHOWNA         = 8
	SW_HIDE           = 0
	SWP_NOACTIVATE    = 0x0010
	SWP_NOSIZE        = 0x0001
	HWND_TOPMOST      = ^uintptr(0) // (HWND)-1
	WM_CLOSE          = 0x0010
	PM_REMOVE         = 1
)

// Windows API functions
var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	gdi32  = windows.NewLazySystemDLL("gdi32.dll")

	procRegisterClassEx            = user32.NewProc("RegisterClassExW")
	procCreateWindowEx             = user32.NewProc("CreateWindowExW")
	procDefWindowProc              = user32.NewProc("DefWindowProcW")
	procDestroyWindow              = user32.NewProc("DestroyWindow")
	procShowWindow                 = user32.NewProc("ShowWindow")
	procSetWindowPos               = user32.NewProc("SetWindowPos")
	procSetLayeredWindowAttributes = user32.NewProc("SetLayeredWindowAttributes")
	procPeekMessage                = user32.NewProc("PeekMessageW")
	procTranslateMessage           = user32.NewProc("TranslateMessage")
	procDispatchMessage            = user32.NewProc("DispatchMessageW")
	procCreateSolidBrush           = gdi32.NewProc("CreateSolidBrush")
	procGetModuleHandle            = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetModuleHandleW")
)

// Windows API structures
type wndClassEx struct {
	CbSize        uint32
	Style         uint32
	LpfnWndProc   uintptr
	CbClsExtra    int32
	CbWndExtra    int32
	HInstance     windows.Handle
	HIcon         windows.Handle
	HCursor       windows.Handle
	HbrBackground windows.Handle
	LpszMenuName  *uint16
	LpszClassName *uint16
	HIconSm       windows.Handle
}

type msg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type point struct {
	X, Y int32
}

// Indicator window colors as COLORREF (0x00BBGGRR)
const (
	primaryColor   = 0x004040E8 // warm red for the left button
	secondaryColor = 0x00E89040 // cool blue for the right button
)

// Overlay owns the indicator windows
type Overlay struct {
	opts    Options
	hwnds   [2]windows.Handle
	shown   [2]bool
	mu      sync.Mutex
	running bool
	ready   chan error
	stop    chan struct{}
	done    chan struct{}
}

// New creates the overlay windows. The windows and their message loop live
// on one goroutine the whole time, as window ownership requires.
func New(opts Options) (*Overlay, error) {
	o := &Overlay{
		opts:  opts,
		ready: make(chan error, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}

	go o.windowLoop()

	if err := <-o.ready; err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.running = true
	o.mu.Unlock()

	log.Printf("Overlay: indicator windows created")
	return o, nil
}

// Render implements indicator.Sink
func (o *Overlay) Render(snap indicator.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.running {
		return
	}

	x := snap.X + o.opts.OffsetX
	y := snap.Y + o.opts.OffsetY

	o.apply(0, snap.Primary && o.opts.PrimaryEnabled, x, y)
	o.apply(1, snap.Secondary && o.opts.SecondaryEnabled, x, y)
}

// apply moves one indicator window and toggles its visibility
func (o *Overlay) apply(slot int, visible bool, x, y int) {
	hwnd := o.hwnds[slot]
	if hwnd == 0 {
		return
	}

	if visible {
		procSetWindowPos.Call(
			uintptr(hwnd),
			HWND_TOPMOST,
			uintptr(x), uintptr(y), 0, 0,
			SWP_NOSIZE|SWP_NOACTIVATE,
		)
	}

	if visible == o.shown[slot] {
		return
	}
	o.shown[slot] = visible

	if visible {
		procShowWindow.Call(uintptr(hwnd), SW_SHOWNA)
	} else {
		procShowWindow.Call(uintptr(hwnd), SW_HIDE)
	}
}

// Close tears down the windows and stops the message loop
func (o *Overlay) Close() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	o.mu.Unlock()

	close(o.stop)
	<-o.done
	log.Printf("Overlay: indicator windows destroyed")
}

// windowLoop creates the windows, pumps messages, and destroys the windows
// on stop. All window calls happen here.
func (o *Overlay) windowLoop() {
	defer close(o.done)

	if err := o.createWindows(); err != nil {
		o.ready <- err
		return
	}
	o.ready <- nil

	var m msg
	for {
		select {
		case <-o.stop:
			for _, hwnd := range o.hwnds {
				if hwnd != 0 {
					procDestroyWindow.Call(uintptr(hwnd))
				}
			}
			return
		default:
		}

		ret, _, _ := procPeekMessage.Call(
			uintptr(unsafe.Pointer(&m)),
			0, 0, 0, PM_REMOVE,
		)
		if int32(ret) != 0 {
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
			procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
		} else {
			// Nothing pending; the windows are layered and never painted
			// from here, so a coarse sleep is plenty
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// createWindows registers one class per button color and creates both
// indicator windows, hidden
func (o *Overlay) createWindows() error {
	size := o.opts.Size
	if size <= 0 {
		size = 48
	}

	colors := [2]uint32{primaryColor, secondaryColor}
	names := [2]string{"ClickhaloPrimary", "ClickhaloSecondary"}

	hInstance, _, _ := procGetModuleHandle.Call(0)

	for i := 0; i < 2; i++ {
		brush, _, _ := procCreateSolidBrush.Call(uintptr(colors[i]))

		className, err := windows.UTF16PtrFromString(names[i])
		if err != nil {
			return err
		}

		wc := wndClassEx{
			CbSize:        uint32(unsafe.Sizeof(wndClassEx{})),
			LpfnWndProc:   windows.NewCallback(wndProc),
			HInstance:     windows.Handle(hInstance),
			HbrBackground: windows.Handle(brush),
			LpszClassName: className,
		}

		ret, _, err := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc)))
		if ret == 0 {
			return fmt.Errorf("RegisterClassEx failed for %s: %v", names[i], err)
		}

		hwnd, _, err := procCreateWindowEx.Call(
			WS_EX_LAYERED|WS_EX_TRANSPARENT|WS_EX_TOPMOST|WS_EX_TOOLWINDOW|WS_EX_NOACTIVATE,
			uintptr(unsafe.Pointer(className)),
			0, // no title
			WS_POPUP,
			0, 0, uintptr(size), uintptr(size),
			0, 0, hInstance, 0,
		)
		if hwnd == 0 {
			return fmt.Errorf("CreateWindowEx failed for %s: %v", names[i], err)
		}

		alpha := o.opts.Alpha
		if alpha == 0 {
			alpha = 200
		}
		procSetLayeredWindowAttributes.Call(hwnd, 0, uintptr(alpha), LWA_ALPHA)

		o.hwnds[i] = windows.Handle(hwnd)
	}

	return nil
}

// wndProc handles window messages for the indicator windows. They receive
// no input (WS_EX_TRANSPARENT), so default handling covers everything.
func wndProc(hwnd windows.Handle, message uint32, wparam, lparam uintptr) uintptr {
	ret, _, _ := procDefWindowProc.Call(
		uintptr(hwnd),
		uintptr(message),
		wparam,
		lparam,
	)
	return ret
}
