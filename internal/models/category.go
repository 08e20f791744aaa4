// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ColorVariant is the badge color of a category. Only values from the
// fixed palette are stored.
type ColorVariant string

const (
	ColorGray   ColorVariant = "gray"
	ColorRed    ColorVariant = "red"
	ColorOrange ColorVariant = "orange"
	ColorAmber  ColorVariant = "amber"
	ColorGreen  ColorVariant = "green"
	ColorTeal   ColorVariant = "teal"
	ColorBlue   ColorVariant = "blue"
	ColorIndigo ColorVariant = "indigo"
	ColorPurple ColorVariant = "purple"
	ColorPink   ColorVariant = "pink"

	DefaultColor = ColorGray
)

// Palette lists every accepted color variant.
var Palette = []ColorVariant{
	ColorGray, ColorRed, ColorOrange, ColorAmber, ColorGreen,
	ColorTeal, ColorBlue, ColorIndigo, ColorPurple, ColorPink,
}

// Valid reports whether c is a palette member.
func (c ColorVariant) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}

// CoerceColor maps arbitrary input onto the palette. Unknown values fall
// back to DefaultColor instead of being rejected.
func CoerceColor(s string) ColorVariant {
	c := ColorVariant(s)
	if c.Valid() {
		return c
	}
	return DefaultColor
}

// Category groups posts. Slug is unique among categories.
type Category struct {
	ID           uuid.UUID    `json:"id"`
	Slug         string       `json:"slug"`
	Name         string       `json:"name"`
	Description  *string      `json:"description,omitempty"`
	ColorVariant ColorVariant `json:"color_variant"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Virtual field populated by list queries.
	PostCount int `json:"post_count"`
}

// CategoryInput carries the caller-supplied fields for creating a category.
type CategoryInput struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	ColorVariant string  `json:"color_variant"`
}

// CategoryPatch is a partial update. A nil field is left untouched; a
// name change re-derives the slug and an empty description clears it.
type CategoryPatch struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	ColorVariant *string `json:"color_variant"`
}
