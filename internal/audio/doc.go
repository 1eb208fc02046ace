// Package audio plays sample audio through the system output using oto.
// MP3 resources are decoded with go-mp3 and resampled to the rate of the
// output device, which is opened once on first use.
package audio
