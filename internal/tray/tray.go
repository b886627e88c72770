// Package tray provides the system tray menu using getlantern/systray.
package tray

import (
	"github.com/getlantern/systray"
)

// MenuItem represents one tray menu entry
type MenuItem struct {
	ID        int
	Title     string
	Checkable bool
	Checked   bool
	Callback  func(checked bool)
	item      *systray.MenuItem
}

// Tray manages the system tray icon and menu
type Tray struct {
	title   string
	tooltip string
	items   []*MenuItem
	readyCh chan struct{}
	quitCh  chan struct{}
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// AddMenuItem adds a plain menu item
func (t *Tray) AddMenuItem(title string, callback func()) int {
	return t.add(&MenuItem{
		Title: title,
		Callback: func(bool) {
			if callback != nil {
				callback()
			}
		},
	})
}

// AddCheckItem adds a checkable menu item. The callback receives the new
// checked state after each click.
func (t *Tray) AddCheckItem(title string, checked bool, callback func(checked bool)) int {
	return t.add(&MenuItem{
		Title:     title,
		Checkable: true,
		Checked:   checked,
		Callback:  callback,
	})
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.items = append(t.items, nil)
}

func (t *Tray) add(mi *MenuItem) int {
	mi.ID = len(t.items)
	t.items = append(t.items, mi)
	return mi.ID
}

// SetItemChecked sets the checked state of a menu item
func (t *Tray) SetItemChecked(id int, checked bool) {
	if id < 0 || id >= len(t.items) || t.items[id] == nil {
		return
	}
	mi := t.items[id]
	mi.Checked = checked
	if mi.item != nil {
		if checked {
			mi.item.Check()
		} else {
			mi.item.Uncheck()
		}
	}
}

// Run starts the tray event loop (blocks until Stop)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() {
		close(t.quitCh)
	})
}

// Stop stops the tray, unblocking Run
func (t *Tray) Stop() {
	systray.Quit()
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(getIcon())
	close(t.readyCh)

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}

		var item *systray.MenuItem
		if menuItem.Checkable {
			item = systray.AddMenuItemCheckbox(menuItem.Title, "", menuItem.Checked)
		} else {
			item = systray.AddMenuItem(menuItem.Title, "")
		}
		menuItem.item = item

		if menuItem.Callback == nil {
			continue
		}
		go func(mi *MenuItem) {
			for {
				select {
				case <-mi.item.ClickedCh:
					if mi.Checkable {
						mi.Checked = !mi.Checked
						if mi.Checked {
							mi.item.Check()
						} else {
							mi.item.Uncheck()
						}
					}
					mi.Callback(mi.Checked)
				case <-t.quitCh:
					return
				}
			}
		}(menuItem)
	}
}

// getIcon returns a minimal valid 16x16 32-bit ICO. Pixels and mask stay
// zero, which renders as a transparent placeholder until a real icon ships.
func getIcon() []byte {
	icon := make([]byte, 1118)
	// ICO header
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	// Icon directory entry
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00, // bitmap size
		0x16, 0x00, 0x00, 0x00, // bitmap offset
	})
	// DIB header
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00, // header size
		0x10, 0x00, 0x00, 0x00, // width
		0x20, 0x00, 0x00, 0x00, // height (doubled for the mask)
		0x01, 0x00, // planes
		0x20, 0x00, // bits per pixel
		0x00, 0x00, 0x00, 0x00, // compression
		0x00, 0x04, 0x00, 0x00, // image size
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	return icon
}
