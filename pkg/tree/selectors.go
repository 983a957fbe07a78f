package tree

// Selectors names the host elements the engine depends on. The host must keep
// exposing these unchanged.
type Selectors struct {
	Container string `koanf:"container"` // Element holding the folder tree
	Folder    string `koanf:"folder"`    // One folder entry
	Title     string `koanf:"title"`     // Child of a folder carrying its path
	PathAttr  string `koanf:"path_attr"` // Attribute on Title holding the path
	RootClass string `koanf:"root"`      // Class marking the root folder
	Marker    string `koanf:"marker"`    // Class the engine adds to suppressed folders
}

// DefaultSelectors returns the selectors of the reference host
func DefaultSelectors() Selectors {
	return Selectors{
		Container: ".nav-files-container",
		Folder:    ".nav-folder",
		Title:     ".nav-folder-title",
		PathAttr:  "data-path",
		RootClass: "mod-root",
		Marker:    "hidden-folder-flag-hidden",
	}
}

// WithDefaults fills empty fields from DefaultSelectors
func (s Selectors) WithDefaults() Selectors {
	d := DefaultSelectors()
	if s.Container == "" {
		s.Container = d.Container
	}
	if s.Folder == "" {
		s.Folder = d.Folder
	}
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.PathAttr == "" {
		s.PathAttr = d.PathAttr
	}
	if s.RootClass == "" {
		s.RootClass = d.RootClass
	}
	if s.Marker == "" {
		s.Marker = d.Marker
	}
	return s
}
