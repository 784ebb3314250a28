package twitchhls

// Credentials is the signed token pair that authorizes one manifest request.
type Credentials struct {
	Token         string
	Sig           string
	Authorization Authorization
}

// Authorization tells whether the token may actually play the stream.
type Authorization struct {
	IsForbidden         bool   `json:"isForbidden"`
	ForbiddenReasonCode string `json:"forbiddenReasonCode"`
}

// QualityVariant is one rendition listed in a master manifest.
type QualityVariant struct {
	Name       string
	Resolution string
	FrameRate  float64
	Bandwidth  uint32
	URL        string
}

// Output is the printable form of a selected variant.
type Output struct {
	Channel    string  `json:"channel"`
	Quality    string  `json:"quality"`
	Resolution string  `json:"resolution"`
	FrameRate  float64 `json:"frame_rate"`
	URL        string  `json:"url"`
}
