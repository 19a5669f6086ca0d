package app

import (
	"image/color"

	"vector-editor/internal/features"
	"vector-editor/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// EditorTheme is the application theme. Primary and selection colors match
// the map highlight colors.
type EditorTheme struct{}

var _ fyne.Theme = (*EditorTheme)(nil)

func (t *EditorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return features.DefaultColors[2]
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(features.SelectionColor, 0x80)
	case theme.ColorNameFocus:
		return colorutil.WithAlpha(features.DefaultColors[2], 0x80)
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *EditorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *EditorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *EditorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameInlineIcon:
		return 22 // toolbar tool icons
	default:
		return theme.DefaultTheme().Size(name)
	}
}
