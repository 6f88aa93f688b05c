package imaging

// ImageRequest describes the rendering a client asks for. The zero value
// requests the full-size image.
type ImageRequest struct {
	Thumbnail bool `json:"thumbnail"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
}

// FullSize reports whether neither dimension was requested. Resolving a
// full-size request never needs the upstream size metadata.
func (r ImageRequest) FullSize() bool {
	return r.Width == 0 && r.Height == 0
}
