// Package slidecrawler provides end-to-end testing for the Imagination
// slideshow editor.
//
// slidecrawler launches the real application, drives it through its
// accessibility tree (menus, file choosers, dialogs), builds image fixtures
// with external tools, and checks exported videos by reading their frames
// back with OCR. Failures are reported through the standard [testing.TB]
// interface.
//
// # Quick Start
//
//	func TestExport(t *testing.T) {
//		s := slidecrawler.Open(t)
//		s.Start()
//		s.AddSlide(s.TextToImage("AB").Path)
//		video := s.Export()
//		s.ExpectText(s.FrameAt(video.Path, 0.5).Path, "AB")
//		s.SaveAs(filepath.Join(s.Dir(), "result.img"))
//		s.Quit()
//	}
//
// Cleanup is automatic through t.Cleanup: a running application is killed
// and the session directory, with every fixture and export in it, is
// removed.
//
// # Session Lifecycle
//
// A [Session] is Unstarted, Running or Closed. [Session.Start] launches the
// application (optionally with a document) and waits for it to register
// with the accessibility bus. [Session.Quit] quits through the menu and
// waits for the application to die; a confirmation alert fails the test.
// A session can start the application again once it is Closed.
//
// Operations on the application fail the test unless the session is
// Running. Fixture and OCR operations work in any state.
//
// # Waiting and Conditions
//
// Every lookup polls the live accessibility tree until an element appears
// or a timeout expires. [Session.WaitFor] polls a [Condition] the same way.
//
// Wait behavior:
//
//   - Defaults: 5s timeout, 100ms poll interval
//   - Per-session overrides: [WithTimeout], [WithPollInterval]
//   - Per-call overrides: [WithinTimeout], [WithWaitPollInterval]
//   - Poll intervals under 10ms are clamped to 10ms
//   - Negative timeout or poll values fail the test immediately
//   - If the application dies, the session moves to Closed and the wait
//     fails immediately
//
// Built-in conditions include [Present], [Showing], [Absent],
// [TitlePrefix], [Not], [All] and [Any].
//
// # Fixtures and Verification
//
// [Session.TextToImage], [Session.ExifRotate] and [Session.FrameAt]
// generate uniquely named files in the session directory. [Session.OCR]
// reads a single line of text from an image; [Session.ExpectText] and
// [Session.TextAt] build on it.
//
// # Snapshots
//
// [Session.MatchSnapshot] compares the accessibility tree, as rendered by
// [Session.DumpTree], to golden files under testdata/snapshots. Run the
// tests with -update to create or update golden files.
//
// # Diagnostics
//
// Failures report the operation, the error and the current accessibility
// tree. Errors are classified by kind: [ErrSyncTimeout],
// [ErrUnexpectedDialog], [ErrExportFailed], [ErrMismatch],
// [ErrInvalidArgument] and [ErrPrecondition].
//
// # Requirements
//
//   - Go 1.24+
//   - a session with the AT-SPI accessibility bus
//   - the application, convert (ImageMagick), exiftool, ffmpeg and tesseract
//
// The application and each tool are resolved in this order:
//
//   - the matching option ([WithAppPath], [WithToolPath])
//   - SLIDECRAWLER_APP (or IMAGINATION), SLIDECRAWLER_<TOOL>
//   - the config file named by [WithConfigFile] or SLIDECRAWLER_CONFIG
//   - PATH lookup
//
// Tests skip when something found only by PATH lookup is missing, or when
// the accessibility bus is unavailable.
package slidecrawler
