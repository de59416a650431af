package audioplan

// SourceKind distinguishes the media a segment comes from.
type SourceKind string

const (
	SourceSound SourceKind = "sound"
	SourceVideo SourceKind = "video"
)

// Source identifies a media file.
type Source struct {
	Kind SourceKind `json:"kind" yaml:"kind"`
	Path string     `json:"path" yaml:"path"`
}

// Segment is one flattened placement of a source's audio on the project
// timeline.
type Segment struct {
	ID                string `json:"id"`
	Source            Source `json:"source"`
	ProjectStartFrame int    `json:"project_start_frame"`
	SourceStartFrame  int    `json:"source_start_frame"`
	DurationFrames    int    `json:"duration_frames"`
}

// ProjectEndFrame returns the last project frame the segment covers.
func (s Segment) ProjectEndFrame() int {
	return s.ProjectStartFrame + s.DurationFrames - 1
}
