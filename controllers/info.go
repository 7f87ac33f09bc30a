package controllers

import (
	"net/http"
	"strings"

	"geniustrading/logger"
	"geniustrading/services"
	"geniustrading/utils"

	"github.com/gorilla/mux"
)

// InfoController serves the public registry data shown on the landing and
// deposit pages.
type InfoController struct {
	registry *services.Registry
}

func NewInfoController(registry *services.Registry) *InfoController {
	return &InfoController{registry: registry}
}

// GET /api/deposit-addresses
func (c *InfoController) DepositAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := c.registry.DepositAddresses(r.Context())
	if err != nil {
		utils.WriteError(w, logger.For("info"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", list)
}

// GET /api/deposit-addresses/{method}
func (c *InfoController) DepositAddress(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimSpace(mux.Vars(r)["method"])
	addr, err := c.registry.DepositAddress(r.Context(), method)
	if err != nil {
		utils.WriteError(w, logger.For("info"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", addr)
}

// GET /api/testimonials
func (c *InfoController) Testimonials(w http.ResponseWriter, r *http.Request) {
	list, err := c.registry.Testimonials(r.Context())
	if err != nil {
		utils.WriteError(w, logger.For("info"), err)
		return
	}
	utils.WriteOK(w, http.StatusOK, "Successfully", list)
}

// HealthHandler is the liveness probe.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteOK(w, http.StatusOK, "OK", map[string]string{"status": "ok"})
}
