package catalog

import (
	"fmt"

	"server/internal/domain"
)

const (
	actTwoMinDuration = 3
	actTwoMaxDuration = 30
	rayFlashMaxDur    = 15
)

func minimax() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "fal-ai/minimax/hailuo-02/standard/image-to-video",
		Alias:    "Hailuo 02",
		Platform: domain.PlatformFal,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			return parseFramePair(p, true)
		},
		Cost: func(p domain.Payload) float64 { return videoCost(p, 4) },
	}
}

func ray() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "fal-ai/luma-dream-machine/ray-2/image-to-video",
		Alias:    "Luma Ray 2",
		Platform: domain.PlatformFal,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			input, err := parseFramePair(p, false)
			if err != nil {
				return nil, err
			}
			ratio := p.String("aspect_ratio")
			if ratio == "" {
				ratio = "16:9"
			}
			input["aspect_ratio"] = ratio
			return input, nil
		},
		Cost:     func(p domain.Payload) float64 { return videoCost(p, 6) },
		Fallback: &domain.FallbackConfig{ModelID: ModelRayFlash},
	}
}

func rayFlash() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "luma/ray-flash-2-720p:0e7c3erf",
		Alias:    "Luma Ray Flash 2",
		Platform: domain.PlatformReplicate,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			input, err := parseFramePair(p, false)
			if err != nil {
				return nil, err
			}
			input["duration"] = durationSeconds(p, 5, 1, rayFlashMaxDur)
			return input, nil
		},
		Cost: func(p domain.Payload) float64 { return videoCost(p, 3) },
	}
}

func lumaModifyVideo() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "luma/modify-video",
		Alias:    "Luma Modify",
		Platform: domain.PlatformLuma,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			media := p.String("media")
			if media == "" {
				return nil, fmt.Errorf("%w: media is required", domain.ErrInvalidParams)
			}
			input := domain.ProviderInput{
				"generation_type": "modify_video",
				"media":           map[string]any{"url": media},
				"model":           "ray-flash-2",
				"mode":            "reimagine_1",
			}
			if mode := p.String("mode"); mode != "" {
				input["mode"] = mode
			}
			if first := p.String("first_frame"); first != "" {
				input["first_frame"] = map[string]any{"url": first}
			}
			if prompt := p.String("prompt"); prompt != "" {
				input["prompt"] = prompt
			}
			return input, nil
		},
		Cost: func(p domain.Payload) float64 { return videoCost(p, 5) },
	}
}

func runwayActTwo() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "act_two:latest",
		Alias:    "Runway Act-Two",
		Platform: domain.PlatformRunway,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			character := p.String("character")
			reference := p.String("reference")
			if character == "" || reference == "" {
				return nil, fmt.Errorf("%w: character and reference are required", domain.ErrInvalidParams)
			}
			return domain.ProviderInput{
				"character": map[string]any{"type": "image", "uri": character},
				"reference": map[string]any{"type": "video", "uri": reference},
				"ratio":     "1280:720",
				"duration":  durationSeconds(p, 10, actTwoMinDuration, actTwoMaxDuration),
			}, nil
		},
		Cost: func(p domain.Payload) float64 { return videoCost(p, 8) },
	}
}

func seedance() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "doubao-seedance-1-0-pro",
		Alias:    "Seedance Pro",
		Platform: domain.PlatformArk,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			prompt := p.String("prompt")
			if prompt == "" {
				return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
			}
			content := []any{map[string]any{"type": "text", "text": prompt}}
			if img := firstFrameURL(p); img != "" {
				content = append(content, map[string]any{
					"type":      "image_url",
					"image_url": map[string]any{"url": img},
				})
			}
			return domain.ProviderInput{"content": content}, nil
		},
		Cost: func(p domain.Payload) float64 { return videoCost(p, 6) },
	}
}

func seedream() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "bytedance/seedream-v3",
		Alias:    "Seedream 3",
		Platform: domain.PlatformWavespeed,
		Type:     domain.TaskTypeImage,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			prompt := p.String("prompt")
			if prompt == "" {
				return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
			}
			width, height := imageSize(p)
			input := domain.ProviderInput{
				"prompt": prompt,
				"width":  width,
				"height": height,
			}
			if images := p.Strings("init_images"); len(images) > 0 {
				input["images"] = images
			}
			return input, nil
		},
		Cost: func(p domain.Payload) float64 { return 2 },
		// 2K requests run on the HD deployment and bill as such.
		UpgradeToModelByInput: func(input domain.ProviderInput) domain.ModelID {
			w, _ := input["width"].(int)
			h, _ := input["height"].(int)
			if w >= 2048 || h >= 2048 {
				return ModelSeedreamHD
			}
			return 0
		},
	}
}

func seedreamHD() *domain.ModelConfig {
	base := seedream()
	return &domain.ModelConfig{
		Name:        "bytedance/seedream-v3-hd",
		Alias:       "Seedream 3 HD",
		Platform:    domain.PlatformWavespeed,
		Type:        domain.TaskTypeImage,
		ParseParams: base.ParseParams,
		Cost:        func(p domain.Payload) float64 { return 4 },
	}
}

func wanTurbo() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "wavespeed-ai/wan-2.2/t2v-turbo",
		Alias:    "Wan Turbo",
		Platform: domain.PlatformWavespeed,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			prompt := p.String("prompt")
			if prompt == "" {
				return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
			}
			return domain.ProviderInput{
				"prompt":   prompt,
				"duration": durationSeconds(p, 5, 1, 10),
			}, nil
		},
		Cost: func(p domain.Payload) float64 { return videoCost(p, 2) },
	}
}

func grokImagine() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "grok-imagine",
		Alias:    "Grok Imagine",
		Platform: domain.PlatformKie,
		Type:     domain.TaskTypeImage,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			prompt := p.String("prompt")
			if prompt == "" {
				return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
			}
			input := domain.ProviderInput{"prompt": prompt}
			if ratio := p.String("aspect_ratio"); ratio != "" {
				input["aspect_ratio"] = ratio
			}
			return input, nil
		},
		Cost:     func(p domain.Payload) float64 { return 1 },
		Fallback: &domain.FallbackConfig{ModelID: ModelSeedream},
	}
}

func kusaAnime() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "kusa/anime-v2",
		Alias:    "Kusa Anime",
		Platform: domain.PlatformKusa,
		Type:     domain.TaskTypeImage,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			prompt := p.String("prompt")
			if prompt == "" {
				return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
			}
			input := domain.ProviderInput{
				"model":  "anime-v2",
				"prompt": prompt,
			}
			if images := p.Strings("init_images"); len(images) > 0 {
				input["init_images"] = images
			}
			return input, nil
		},
		Cost: func(p domain.Payload) float64 { return 1 },
	}
}

func nanoCanvas() *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     "gemini-nano-canvas",
		Alias:    "Nano Canvas",
		Platform: domain.PlatformLocal,
		Type:     domain.TaskTypeImage,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			prompt := p.String("prompt")
			if prompt == "" {
				return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
			}
			input := domain.ProviderInput{"prompt": prompt}
			if images := p.Strings("init_images"); len(images) > 0 {
				input["init_images"] = images
			}
			return input, nil
		},
		Cost: func(p domain.Payload) float64 { return 1 },
	}
}

func soraVariant(name, alias string, imageConditioned bool, perSecond float64) *domain.ModelConfig {
	return &domain.ModelConfig{
		Name:     name,
		Alias:    alias,
		Platform: domain.PlatformKie,
		Type:     domain.TaskTypeVideo,
		ParseParams: func(p domain.Payload) (domain.ProviderInput, error) {
			prompt := p.String("prompt")
			if prompt == "" {
				return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidParams)
			}
			input := domain.ProviderInput{
				"prompt":   prompt,
				"duration": durationSeconds(p, 10, 1, 20),
			}
			if imageConditioned {
				first := firstFrameURL(p)
				if first == "" {
					return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidParams)
				}
				input["image_urls"] = []string{first}
			}
			return input, nil
		},
		Cost: func(p domain.Payload) float64 { return videoCost(p, perSecond) },
	}
}

func sora() *domain.ModelConfig {
	return soraVariant("sora-2-image-to-video", "Sora 2", true, 8)
}

func soraTextToVideo() *domain.ModelConfig {
	return soraVariant("sora-2-text-to-video", "Sora 2", false, 8)
}

func soraPro() *domain.ModelConfig {
	m := soraVariant("sora-2-pro-image-to-video", "Sora 2 Pro", true, 12)
	m.Fallback = &domain.FallbackConfig{ModelID: ModelSora}
	return m
}

func soraProTextToVideo() *domain.ModelConfig {
	m := soraVariant("sora-2-pro-text-to-video", "Sora 2 Pro", false, 12)
	m.Fallback = &domain.FallbackConfig{
		ModelID:        ModelSoraTextToVideo,
		ParamsOverride: map[string]any{"resolution": "720p"},
	}
	return m
}
