// Package catalog holds the static model configuration table: one entry per
// dispatchable model with its platform, credit cost, and payload parser.
package catalog

import "server/internal/domain"

// Model ids are stable wire values; renumbering breaks stored tasks.
const (
	ModelMinimax            domain.ModelID = 1
	ModelRay                domain.ModelID = 2
	ModelRayFlash           domain.ModelID = 3
	ModelLumaModifyVideo    domain.ModelID = 4
	ModelRunwayActTwo       domain.ModelID = 5
	ModelSeedance           domain.ModelID = 6
	ModelSeedream           domain.ModelID = 7
	ModelSeedreamHD         domain.ModelID = 8
	ModelWanTurbo           domain.ModelID = 9
	ModelGrokImagine        domain.ModelID = 10
	ModelKusaAnime          domain.ModelID = 11
	ModelNanoCanvas         domain.ModelID = 12
	ModelSora               domain.ModelID = 20
	ModelSoraTextToVideo    domain.ModelID = 21
	ModelSoraPro            domain.ModelID = 22
	ModelSoraProTextToVideo domain.ModelID = 23
)

// textToImageVideoModels maps text-only video models to their
// image-conditioned siblings, applied when the request carries reference
// media.
var textToImageVideoModels = map[domain.ModelID]domain.ModelID{
	ModelSoraTextToVideo:    ModelSora,
	ModelSoraProTextToVideo: ModelSoraPro,
}

// Resolve picks the model config for a request, substituting the
// image-conditioned sibling when the payload carries reference media.
// The returned id is the possibly substituted one.
func Resolve(c domain.Catalog, id domain.ModelID, p domain.Payload) (domain.ModelID, *domain.ModelConfig, error) {
	if p.HasReferenceMedia() {
		if mapped, ok := textToImageVideoModels[id]; ok {
			id = mapped
		}
	}
	model := c.Get(id)
	if model == nil {
		return id, nil, domain.ErrModelNotFound
	}
	return id, model, nil
}

// Default returns the production model table.
func Default() domain.Catalog {
	return domain.Catalog{
		ModelMinimax:            minimax(),
		ModelRay:                ray(),
		ModelRayFlash:           rayFlash(),
		ModelLumaModifyVideo:    lumaModifyVideo(),
		ModelRunwayActTwo:       runwayActTwo(),
		ModelSeedance:           seedance(),
		ModelSeedream:           seedream(),
		ModelSeedreamHD:         seedreamHD(),
		ModelWanTurbo:           wanTurbo(),
		ModelGrokImagine:        grokImagine(),
		ModelKusaAnime:          kusaAnime(),
		ModelNanoCanvas:         nanoCanvas(),
		ModelSora:               sora(),
		ModelSoraTextToVideo:    soraTextToVideo(),
		ModelSoraPro:            soraPro(),
		ModelSoraProTextToVideo: soraProTextToVideo(),
	}
}
