// Package coordinator holds the sample playback state for the text to speech
// tab: the language catalog, the current selection and its sample, the single
// audio handle, and the download trigger. Presentation code reads immutable
// snapshots and mutates state only through the named operations on
// Coordinator.
package coordinator
