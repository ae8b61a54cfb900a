package domain

// ReloadKind tells connected browsers how to apply a change.
type ReloadKind string

const (
	// ReloadPage asks the browser to reload the whole page.
	ReloadPage ReloadKind = "reload"
	// ReloadCSS asks the browser to swap the matching stylesheet in place.
	ReloadCSS ReloadKind = "css"
)

// ReloadEvent is one notification pushed to live-reload clients.
type ReloadEvent struct {
	Kind ReloadKind `json:"type"`
	Path string     `json:"path,omitempty"`
}

// ReloadKindFor returns how an output written by c should be reloaded.
func ReloadKindFor(c Category) ReloadKind {
	if c == CategoryStyle {
		return ReloadCSS
	}
	return ReloadPage
}
