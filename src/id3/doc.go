// Package id3 wraps the ID3v2 tag of an MP3 file.
//
// A Tag forwards to the underlying id3v2 library through a fixed table of
// members. Members can be resolved by name, which is what the HTTP layer
// and scripts use:
//
//	tag, err := id3.Open("song.mp3", id3.V23)
//	if err != nil {
//		return err
//	}
//	defer tag.Close()
//	res, err := tag.Call("SetTitle", "Oolala") // res is tag itself
//
// Calls that return the wrapped library tag hand back the *Tag instead,
// so the wrapped value never escapes. Typed methods (Title, SetTitle,
// Frames, SetFrames, ...) cover the same ground for Go callers.
//
// Save pins the on-disk version. Frames are translated between v2.3 and
// v2.4 on load (unless WithoutTranslation is given) and on every save.
//
// RewriteTextFrame repairs a text frame whose bytes were stored in a
// charset other than the one the frame declares.
package id3
