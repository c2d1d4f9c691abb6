package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/web"
)

// PagesHandler serves the static HTML pages.
type PagesHandler struct {
	renderer *web.Renderer
	auditor  *audit.Auditor
	logger   *zap.Logger
}

// NewPagesHandler creates a PagesHandler.
func NewPagesHandler(renderer *web.Renderer, auditor *audit.Auditor, logger *zap.Logger) *PagesHandler {
	return &PagesHandler{renderer: renderer, auditor: auditor, logger: logger}
}

// HandleIndex handles GET /.
func (h *PagesHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.auditor.Record(r.Context(), "inicializacao_interface_web", nil, nil,
		audit.WithRequest(r.RemoteAddr, r.UserAgent()),
		audit.WithComponent("handler_paginas"))
	h.render(w, "index")
}

// HandleAbout handles GET /sobre.
func (h *PagesHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.render(w, "sobre")
}

func (h *PagesHandler) render(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page, map[string]interface{}{}); err != nil {
		h.logger.Error("template rendering failed",
			zap.String("page", page), zap.Error(err))
		http.Error(w, "Erro interno do servidor", http.StatusInternalServerError)
	}
}
