package catalog

import (
	"fmt"

	"server/internal/domain"
)

// firstFrameURL returns the conditioning image for image-to-video models,
// preferring the single image field over the images list.
func firstFrameURL(p domain.Payload) string {
	if img := p.String("image"); img != "" {
		return img
	}
	if images := p.Strings("images"); len(images) > 0 {
		return images[0]
	}
	return ""
}

// parseFramePair implements the shared image-to-video contract: a single
// image, an explicit end_frame, or a two-element images list for first/last
// frame mode.
func parseFramePair(p domain.Payload, requirePrompt bool) (domain.ProviderInput, error) {
	prompt := p.String("prompt")
	if requirePrompt && prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
	}

	if endFrame := p.String("end_frame"); endFrame != "" {
		first := firstFrameURL(p)
		if first == "" {
			return nil, fmt.Errorf("%w: first frame image is required when end_frame is provided", domain.ErrInvalidParams)
		}
		return domain.ProviderInput{
			"prompt":        prompt,
			"image_url":     first,
			"end_image_url": endFrame,
		}, nil
	}

	if img := p.String("image"); img != "" {
		return domain.ProviderInput{
			"prompt":    prompt,
			"image_url": img,
		}, nil
	}

	images := p.Strings("images")
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidParams)
	}
	if len(images) < 2 {
		return nil, fmt.Errorf("%w: please provide 2 images", domain.ErrInvalidParams)
	}
	return domain.ProviderInput{
		"prompt":        prompt,
		"image_url":     images[0],
		"end_image_url": images[1],
	}, nil
}

// imageSize resolves the seedream-style size keyword into pixel dimensions.
func imageSize(p domain.Payload) (width, height int) {
	switch p.String("size") {
	case "landscape":
		return 1024, 768
	case "portrait":
		return 768, 1024
	case "square":
		return 1024, 1024
	}
	if w, ok := p.Int("width"); ok {
		if h, okh := p.Int("height"); okh {
			return normalizeDimension(w), normalizeDimension(h)
		}
	}
	return 1024, 1024
}

// normalizeDimension floors a dimension to the nearest multiple of eight,
// which every diffusion backend requires.
func normalizeDimension(d int) int {
	if d < 8 {
		return 8
	}
	return d / 8 * 8
}

// durationSeconds reads the requested clip duration, clamped to the given
// bounds, defaulting when absent.
func durationSeconds(p domain.Payload, def, min, max int) int {
	d, ok := p.Int("duration")
	if !ok || d <= 0 {
		return def
	}
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

// videoCost prices a clip from its duration and resolution.
func videoCost(p domain.Payload, perSecond float64) float64 {
	seconds := float64(durationSeconds(p, 5, 1, 30))
	multiplier := 1.0
	switch p.String("resolution") {
	case "1080p":
		multiplier = 2
	case "720p":
		multiplier = 1.5
	}
	return perSecond * seconds * multiplier
}
