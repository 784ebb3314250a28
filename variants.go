package twitchhls

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/grafov/m3u8"
)

const audioOnly = "audio_only"

// ErrNoVariants is returned when a manifest has no variant of the requested kind.
var ErrNoVariants = errors.New("no playable variants")

// ParseVariants decodes a master manifest as returned by usher.
func ParseVariants(manifest string) ([]QualityVariant, error) {
	playlist, listType, err := m3u8.DecodeFrom(strings.NewReader(manifest), true)
	if err != nil {
		return nil, fmt.Errorf("failed to decode m3u8: %w", err)
	}
	if listType != m3u8.MASTER {
		return nil, errors.New("failed to decode m3u8: not a master playlist")
	}

	masterpl := playlist.(*m3u8.MasterPlaylist)

	var quality []QualityVariant
	for _, variant := range masterpl.Variants {
		if variant == nil {
			continue
		}
		name := variant.Video
		if len(variant.Alternatives) > 0 && variant.Alternatives[0] != nil {
			name = variant.Alternatives[0].Name
		}
		quality = append(quality, QualityVariant{
			Name:       name,
			Resolution: variant.Resolution,
			FrameRate:  variant.FrameRate,
			Bandwidth:  variant.Bandwidth,
			URL:        variant.URI,
		})
	}

	if len(quality) == 0 {
		return nil, ErrNoVariants
	}
	return quality, nil
}

// SelectVariant picks "best" (the first entry), "worst" (the last non-audio
// entry) or "audio". Any other quality is treated as best.
func SelectVariant(variants []QualityVariant, quality string) (QualityVariant, error) {
	if len(variants) == 0 {
		return QualityVariant{}, ErrNoVariants
	}

	switch quality {
	case "worst":
		for i := len(variants) - 1; i >= 0; i-- {
			if variants[i].Name != audioOnly {
				return variants[i], nil
			}
		}
		return QualityVariant{}, ErrNoVariants
	case "audio":
		for _, variant := range variants {
			if variant.Name == audioOnly {
				return variant, nil
			}
		}
		return QualityVariant{}, fmt.Errorf("%w: no %s variant", ErrNoVariants, audioOnly)
	default:
		return variants[0], nil
	}
}

// NewOutput describes v as the quality variant of channel.
func NewOutput(channel, quality string, v QualityVariant) *Output {
	return &Output{
		Channel:    channel,
		Quality:    quality,
		Resolution: v.Resolution,
		FrameRate:  v.FrameRate,
		URL:        v.URL,
	}
}

// AsText renders o as labelled lines.
func (o *Output) AsText() string {
	return fmt.Sprintf("Channel: %v \nQuality: %v \nResolution: %v \nFrame Rate: %v \nURL: %v",
		o.Channel,
		o.Quality,
		o.Resolution,
		o.FrameRate,
		o.URL,
	)
}

// AsJSON renders o as indented JSON.
func (o *Output) AsJSON() (string, error) {
	bs, err := json.MarshalIndent(o, "", "	")
	if err != nil {
		return "", fmt.Errorf("couldn't marshal JSON: %w", err)
	}
	return string(bs), nil
}
