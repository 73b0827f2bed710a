package handlers

import (
	"net/http"
	"time"

	"github.com/ivankudzin/sensgen/internal/domain/enums"
	"github.com/ivankudzin/sensgen/internal/domain/model"
	"github.com/ivankudzin/sensgen/internal/domain/rules"
	"github.com/ivankudzin/sensgen/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/sensgen/internal/transport/http/errors"
)

// CatalogHandler lists the choices a client needs to render the login and
// tier screens.
type CatalogHandler struct {
	cooldown time.Duration
}

func NewCatalogHandler(cooldown time.Duration) *CatalogHandler {
	return &CatalogHandler{cooldown: cooldown}
}

func (h *CatalogHandler) Get(w http.ResponseWriter, _ *http.Request) {
	platforms := make([]string, 0, len(enums.Platforms()))
	for _, p := range enums.Platforms() {
		platforms = append(platforms, string(p))
	}

	tiers := make([]string, 0, len(enums.SensitivityTiers()))
	for _, t := range enums.SensitivityTiers() {
		tiers = append(tiers, string(t))
	}

	httperrors.Write(w, http.StatusOK, dto.CatalogResponse{
		Platforms:           platforms,
		Tiers:               tiers,
		IPhoneModels:        model.IPhoneModels(),
		MobileCursorLabels:  rules.MobileCursorLabels(),
		CooldownDurationSec: int64(h.cooldown / time.Second),
	})
}
