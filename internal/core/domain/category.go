package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Category identifies one asset class handled by its own transform task.
type Category string

const (
	// CategoryMarkup covers HTML documents copied verbatim to the output root.
	CategoryMarkup Category = "markup"
	// CategoryStyle covers Sass stylesheets compiled to CSS.
	CategoryStyle Category = "style"
	// CategoryScript covers JavaScript modules bundled into a single file.
	CategoryScript Category = "script"
	// CategoryImage covers raster and vector images that get compressed.
	CategoryImage Category = "image"
	// CategoryFont covers web fonts copied verbatim.
	CategoryFont Category = "font"
)

// Categories lists every category in the order tasks are declared.
var Categories = []Category{
	CategoryMarkup,
	CategoryStyle,
	CategoryScript,
	CategoryImage,
	CategoryFont,
}

var taskNames = map[Category]string{
	CategoryMarkup: "html",
	CategoryStyle:  "css",
	CategoryScript: "js",
	CategoryImage:  "images",
	CategoryFont:   "fonts",
}

// TaskName returns the command name of the category's transform task.
func (c Category) TaskName() string {
	return taskNames[c]
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// CategoryForTask resolves a task name (html, css, js, images, fonts) back to its category.
func CategoryForTask(name string) (Category, error) {
	for c, n := range taskNames {
		if n == name {
			return c, nil
		}
	}
	return "", zerr.With(ErrTaskNotFound, "task", name)
}

// ParseCategory parses either a category name or its task name.
func ParseCategory(s string) (Category, error) {
	if c := Category(s); c.Valid() {
		return c, nil
	}
	c, err := CategoryForTask(s)
	if err != nil {
		return "", zerr.With(ErrUnknownCategory, "category", s)
	}
	return c, nil
}
