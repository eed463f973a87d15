package game

import "github.com/gdamore/tcell/v2"

// Action represents a viewer-requested action.
type Action uint8

const (
	ActionNone Action = iota
	ActionPrevLayer
	ActionNextLayer
	ActionPanN
	ActionPanS
	ActionPanE
	ActionPanW
	ActionPause
	ActionExport
	ActionHelp
	ActionQuit
)

// keyToAction maps a tcell key event to a viewer action.
func keyToAction(ev *tcell.EventKey) Action {
	// Named keys.
	switch ev.Key() {
	case tcell.KeyUp:
		return ActionPanN
	case tcell.KeyDown:
		return ActionPanS
	case tcell.KeyRight:
		return ActionPanE
	case tcell.KeyLeft:
		return ActionPanW
	case tcell.KeyPgUp:
		return ActionNextLayer
	case tcell.KeyPgDn:
		return ActionPrevLayer
	case tcell.KeyEscape:
		return ActionQuit
	}

	// Rune keys.
	switch ev.Rune() {
	case 'k', 'K':
		return ActionPanN
	case 'j', 'J':
		return ActionPanS
	case 'l', 'L':
		return ActionPanE
	case 'h', 'H':
		return ActionPanW
	case '[', '<':
		return ActionPrevLayer
	case ']', '>':
		return ActionNextLayer
	case ' ', 'p', 'P':
		return ActionPause
	case 'e', 'E':
		return ActionExport
	case '?':
		return ActionHelp
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}

// actionToDelta converts a pan action to (dx, dy).
func actionToDelta(a Action) (int, int) {
	switch a {
	case ActionPanN:
		return 0, -1
	case ActionPanS:
		return 0, 1
	case ActionPanE:
		return 1, 0
	case ActionPanW:
		return -1, 0
	}
	return 0, 0
}
