package tui

const (
	keyNextPane  = "tab"
	keyPrevPane  = "shift+tab"
	keyStages    = "1"
	keyProgress  = "2"
	keyQuit      = "q"
	keyInterrupt = "ctrl+c"
	keyDown      = "j"
	keyUp        = "k"
	keyArrowDown = "down"
	keyArrowUp   = "up"
)

// HelpView renders the bottom help bar.
func HelpView() string {
	return StyleHelp.Render("tab/1/2 focus · j/k stage · pgup/pgdn scroll · q quit")
}
