package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"algoarena/internal/ai"
	"algoarena/internal/api/middleware"
	"algoarena/internal/common"
	"algoarena/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ChatHandler struct {
	router *ai.Router
}

func NewChatHandler(router *ai.Router) *ChatHandler {
	return &ChatHandler{router: router}
}

func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.chat)
}

type chatRequest struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"` // preferred provider, optional
}

type chatResponse struct {
	Reply    string `json:"reply"`
	Provider string `json:"provider"`
}

func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Prompt == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	// Choosing a provider is a pro perk; free users take the default
	// fallback order.
	if tier, _ := middleware.GetUserTierFromContext(r.Context()); tier != model.TierPro {
		req.Provider = ""
	}

	reply, provider, err := h.router.Chat(r.Context(), req.Provider, req.Prompt)
	if err != nil {
		if errors.Is(err, ai.ErrAllProvidersBusy) {
			common.RespondWithError(w, http.StatusServiceUnavailable, "All AI providers are busy, try again shortly")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, chatResponse{Reply: reply, Provider: provider})
}
