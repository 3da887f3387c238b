package slidecrawler

// Labels lists every accessible name and description the harness looks up
// in the driven application. The defaults match the application's English
// (LC_ALL=C) user interface; a config file may override any subset.
type Labels struct {
	SlideshowMenu          string `yaml:"slideshow_menu"`
	SlideMenu              string `yaml:"slide_menu"`
	ImportPictures         string `yaml:"import_pictures"`
	ImportSlideshow        string `yaml:"import_slideshow"`
	Open                   string `yaml:"open"`
	SaveAs                 string `yaml:"save_as"`
	Export                 string `yaml:"export"`
	Quit                   string `yaml:"quit"`
	RotateClockwise        string `yaml:"rotate_clockwise"`
	RotateCounterClockwise string `yaml:"rotate_counter_clockwise"`

	// LocationAnchor describes the file chooser widget that receives the
	// go-to-location shortcut.
	LocationAnchor string `yaml:"location_anchor"`
	OpenButton     string `yaml:"open_button"`
	SaveButton     string `yaml:"save_button"`

	SaveDescription string `yaml:"save_description"`
	SlideCount      string `yaml:"slide_count"`
	CurrentSlide    string `yaml:"current_slide"`
	FlipDescription string `yaml:"flip_description"`
	SlideSettings   string `yaml:"slide_settings"`
	TransitionType  string `yaml:"transition_type"`
	ExportSettings  string `yaml:"export_settings"`
	ExportProgress  string `yaml:"export_progress"`
	Pause           string `yaml:"pause"`
	ExportStatus    string `yaml:"export_status"`
	OK              string `yaml:"ok"`
	Cancel          string `yaml:"cancel"`
	Close           string `yaml:"close"`

	// PristineTitle prefixes the window title of a document never saved.
	PristineTitle string `yaml:"pristine_title"`
	// ModifiedMarker prefixes the title of a saved document with changes.
	ModifiedMarker string `yaml:"modified_marker"`
	// DocumentExt is appended by the application to saved documents.
	DocumentExt string `yaml:"document_ext"`
	// FailureMarker in the export status text marks a failed export. It is
	// matched case-insensitively.
	FailureMarker string `yaml:"failure_marker"`
}

// DefaultLabels returns the labels of the stock application.
func DefaultLabels() Labels {
	return Labels{
		SlideshowMenu:          "Slideshow",
		SlideMenu:              "Slide",
		ImportPictures:         "Import pictures",
		ImportSlideshow:        "Import slideshow",
		Open:                   "Open",
		SaveAs:                 "Save As",
		Export:                 "Export",
		Quit:                   "Quit",
		RotateClockwise:        "Rotate clockwise",
		RotateCounterClockwise: "Rotate counter-clockwise",

		LocationAnchor: "Open your personal folder",
		OpenButton:     "Open",
		SaveButton:     "Save",

		SaveDescription: "Save the slideshow",
		SlideCount:      "Total number of slides",
		CurrentSlide:    "Current slide number",
		FlipDescription: "Flip horizontally the selected slides",
		SlideSettings:   "Slide Settings",
		TransitionType:  "Transition type",
		ExportSettings:  "Export Settings",
		ExportProgress:  "Exporting the slideshow",
		Pause:           "Pause",
		ExportStatus:    "Status of export",
		OK:              "OK",
		Cancel:          "Cancel",
		Close:           "Close",

		PristineTitle:  "Imagination",
		ModifiedMarker: "*",
		DocumentExt:    ".img",
		FailureMarker:  "failed",
	}
}
