package render

import (
	"termaid/canvas"
	"termaid/diagram"
)

// NodeStyle returns the outline used to draw a node of the given shape.
// Shapes without a close text rendition fall back to the plain rectangle.
func NodeStyle(cs *canvas.Charset, shape diagram.Shape) canvas.BoxStyle {
	switch shape {
	case diagram.ShapeRounded, diagram.ShapeCircle, diagram.ShapeCylinder:
		return cs.Round
	case diagram.ShapeStadium:
		s := cs.Round
		s.Left, s.Right = '(', ')'
		return s
	case diagram.ShapeDiamond:
		return slanted(cs, true, true)
	case diagram.ShapeTrapezoid:
		return slanted(cs, true, false)
	case diagram.ShapeTrapezoidAlt:
		return slanted(cs, false, true)
	case diagram.ShapeHexagon:
		s := slanted(cs, true, true)
		s.Left, s.Right = '<', '>'
		return s
	case diagram.ShapeAsymmetric:
		s := cs.Rect
		s.Left = '>'
		return s
	case diagram.ShapeSubroutine:
		s := cs.Rect
		if cs.ASCII {
			s.Left, s.Right = '[', ']'
		} else {
			s.Left, s.Right = '║', '║'
		}
		return s
	case diagram.ShapeDoubleCircle:
		if cs.ASCII {
			s := cs.Round
			s.Top, s.Bottom = '=', '='
			return s
		}
		return canvas.BoxStyle{
			TopLeft: '╔', TopRight: '╗', BottomLeft: '╚', BottomRight: '╝',
			Top: '═', Bottom: '═', Left: '║', Right: '║',
		}
	}
	return cs.Rect
}

// slanted builds a box with leaning corners. topIn draws the top corners as
// / and \ and bottomIn the bottom corners as \ and /; a false flag swaps the
// pair.
func slanted(cs *canvas.Charset, topIn, bottomIn bool) canvas.BoxStyle {
	fwd, back := '╱', '╲'
	if cs.ASCII {
		fwd, back = '/', '\\'
	}
	s := cs.Rect
	if topIn {
		s.TopLeft, s.TopRight = fwd, back
	} else {
		s.TopLeft, s.TopRight = back, fwd
	}
	if bottomIn {
		s.BottomLeft, s.BottomRight = back, fwd
	} else {
		s.BottomLeft, s.BottomRight = fwd, back
	}
	return s
}

// PseudostateGlyph returns the mark drawn for a start or end state.
func PseudostateGlyph(cs *canvas.Charset, shape diagram.Shape) rune {
	switch {
	case shape == diagram.ShapeStateEnd && cs.ASCII:
		return '@'
	case shape == diagram.ShapeStateEnd:
		return '◉'
	case cs.ASCII:
		return '*'
	}
	return '●'
}
