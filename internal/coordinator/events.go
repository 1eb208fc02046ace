package coordinator

// EventKind identifies what changed.
type EventKind int

const (
	EventCatalogLoaded EventKind = iota
	EventCatalogFailed
	EventSampleResolved
	EventSampleFailed
	EventPlaybackChanged
	EventPlaybackEnded
	EventDownloaded
	EventDownloadFailed
)

func (k EventKind) String() string {
	switch k {
	case EventCatalogLoaded:
		return "catalog loaded"
	case EventCatalogFailed:
		return "catalog failed"
	case EventSampleResolved:
		return "sample resolved"
	case EventSampleFailed:
		return "sample failed"
	case EventPlaybackChanged:
		return "playback changed"
	case EventPlaybackEnded:
		return "playback ended"
	case EventDownloaded:
		return "downloaded"
	case EventDownloadFailed:
		return "download failed"
	default:
		return "unknown"
	}
}

// Event is published after a state change. Observers should read a fresh
// Snapshot rather than rely on the event alone.
type Event struct {
	Kind EventKind
	Path string
	Err  error
}

// Snapshot is a read-only view of the coordinator state.
type Snapshot struct {
	Languages     []Language
	CatalogLoaded bool
	Selected      string
	Sample        Sample
	Resolving     bool
	Playback      PlaybackState
	IsPlaying     bool
}

// SelectedLanguage returns the catalog entry for the selection, falling back
// to a bare entry when the catalog does not list it.
func (s Snapshot) SelectedLanguage() Language {
	for _, l := range s.Languages {
		if l.Code == s.Selected {
			return l
		}
	}
	return Language{Code: s.Selected, Name: s.Selected}
}

// SelectedIndex returns the catalog position of the selection, or -1.
func (s Snapshot) SelectedIndex() int {
	for i, l := range s.Languages {
		if l.Code == s.Selected {
			return i
		}
	}
	return -1
}
