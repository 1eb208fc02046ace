package coordinator

import "context"

// DownloadTrigger saves the loaded sample's audio under the language code.
type DownloadTrigger struct {
	saver Saver
}

// NewDownloadTrigger returns a trigger backed by saver.
func NewDownloadTrigger(saver Saver) *DownloadTrigger {
	return &DownloadTrigger{saver: saver}
}

// FileName returns the saved artifact name for a language code.
func FileName(code string) string {
	return code + AudioExtension
}

// Download saves sample as <code>.mp3. Nothing is saved and ErrNoSample is
// returned when no sample with an audio location is loaded.
func (d *DownloadTrigger) Download(ctx context.Context, code string, sample Sample) (string, error) {
	if !sample.Loaded() {
		return "", ErrNoSample
	}
	if code == "" {
		code = sample.Language
	}

	path, err := d.saver.Save(ctx, sample.AudioLocation, FileName(code))
	if err != nil {
		return "", &Error{Op: OpDownload, Language: code, Cause: err}
	}
	return path, nil
}
