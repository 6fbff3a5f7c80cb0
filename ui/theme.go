package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Catppuccin Mocha palette, dark only.
var (
	ctpBase     = color.NRGBA{R: 30, G: 30, B: 46, A: 255}
	ctpMantle   = color.NRGBA{R: 24, G: 24, B: 37, A: 255}
	ctpSurface0 = color.NRGBA{R: 49, G: 50, B: 68, A: 255}
	ctpSurface1 = color.NRGBA{R: 69, G: 71, B: 90, A: 255}
	ctpSurface2 = color.NRGBA{R: 88, G: 91, B: 112, A: 255}
	ctpOverlay0 = color.NRGBA{R: 108, G: 112, B: 134, A: 255}
	ctpOverlay1 = color.NRGBA{R: 127, G: 132, B: 156, A: 255}
	ctpText     = color.NRGBA{R: 205, G: 214, B: 244, A: 255}
	ctpBlue     = color.NRGBA{R: 137, G: 180, B: 250, A: 255}
	ctpRed      = color.NRGBA{R: 243, G: 139, B: 168, A: 255}
)

// deckTheme wraps the default theme with a dark palette.
type deckTheme struct {
	fyne.Theme
}

func newDeckTheme() fyne.Theme {
	return &deckTheme{Theme: theme.DefaultTheme()}
}

func (t *deckTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return ctpBase
	case theme.ColorNameButton:
		return ctpSurface0
	case theme.ColorNameDisabled:
		return ctpOverlay0
	case theme.ColorNameForeground:
		return ctpText
	case theme.ColorNameHeaderBackground:
		return ctpMantle
	case theme.ColorNameInputBackground:
		return ctpSurface0
	case theme.ColorNameInputBorder:
		return ctpSurface2
	case theme.ColorNameOverlayBackground:
		return ctpMantle
	case theme.ColorNamePlaceHolder:
		return ctpOverlay1
	case theme.ColorNamePrimary:
		return ctpBlue
	case theme.ColorNameScrollBar:
		return ctpSurface2
	case theme.ColorNameSeparator:
		return ctpSurface0
	case theme.ColorNameHover:
		return ctpSurface1
	case theme.ColorNameFocus:
		return ctpBlue
	case theme.ColorNameForegroundOnPrimary:
		return ctpBase
	case theme.ColorNameSelection:
		return ctpSurface1
	case theme.ColorNameError:
		return ctpRed
	default:
		return t.Theme.Color(name, variant)
	}
}
