package domain

import (
	"path"
	"strings"
)

// Asset is a file travelling through a transform pipeline.
type Asset struct {
	// Path is the slash-separated path relative to the category base directory.
	Path string
	// Source is the filesystem path the asset was read from. Empty for generated assets.
	Source string
	// Contents holds the current bytes of the asset.
	Contents []byte
}

// Ext returns the lower-cased extension of the asset path, including the dot.
func (a Asset) Ext() string {
	return strings.ToLower(path.Ext(a.Path))
}

// WithContents returns a copy of a carrying new contents.
func (a Asset) WithContents(b []byte) Asset {
	a.Contents = b
	return a
}

// WithExt returns a copy of a whose path extension is replaced by ext.
func (a Asset) WithExt(ext string) Asset {
	a.Path = strings.TrimSuffix(a.Path, path.Ext(a.Path)) + ext
	return a
}

// WithSuffix returns a copy of a with suffix inserted before the extension,
// turning main.css into main.min.css.
func (a Asset) WithSuffix(suffix string) Asset {
	ext := path.Ext(a.Path)
	a.Path = strings.TrimSuffix(a.Path, ext) + suffix + ext
	return a
}
