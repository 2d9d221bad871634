package model

import "image"

// Rect is a screen-space rectangle in scaled pixels. Min is inclusive, Max exclusive.
type Rect = image.Rectangle

// RectXYWH builds a Rect from an origin and a size.
func RectXYWH(x, y, w, h int) Rect {
	return image.Rect(x, y, x+w, y+h)
}
