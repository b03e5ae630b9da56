package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/transport"
	"github.com/workhq/workplace-bot/internal/transport/middleware"
	"github.com/workhq/workplace-bot/pkg/logger"
)

const maxInteractionBody = 1 << 20

// Dispatcher handles one verified interaction and always returns a response.
type Dispatcher interface {
	Dispatch(ctx context.Context, in *discord.Interaction) *discord.Response
}

// InteractionsHandler is the single webhook endpoint Discord calls. It
// verifies the ed25519 signature over the raw body before any parsing, then
// hands the decoded interaction to the dispatcher.
type InteractionsHandler struct {
	*transport.BaseHandler
	verifier   *discord.Verifier
	dispatcher Dispatcher
}

func NewInteractionsHandler(base *transport.BaseHandler, verifier *discord.Verifier, dispatcher Dispatcher) *InteractionsHandler {
	return &InteractionsHandler{
		BaseHandler: base,
		verifier:    verifier,
		dispatcher:  dispatcher,
	}
}

// signatureHeaders reads the signature pair, falling back to the lowercase
// header names some proxies rewrite to.
func signatureHeaders(r *http.Request) (sig, ts string) {
	sig = r.Header.Get("X-Signature-Ed25519")
	if sig == "" {
		sig = r.Header.Get("x-signature-ed25519")
	}
	ts = r.Header.Get("X-Signature-Timestamp")
	if ts == "" {
		ts = r.Header.Get("x-signature-timestamp")
	}
	return sig, ts
}

func (h *InteractionsHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx)

	// The signature covers the raw bytes; read before any decoding.
	body, err := io.ReadAll(io.LimitReader(r.Body, maxInteractionBody))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	sig, ts := signatureHeaders(r)
	if !h.verifier.Verify(sig, ts, body) {
		log.Warn("invalid interaction signature",
			"code", internal.ErrInvalidSignature.Code,
			"remote_addr", r.RemoteAddr,
			"headers", middleware.FilterHeaders(r.Header))
		h.WriteError(w, internal.ErrInvalidSignature.StatusCode, internal.ErrInvalidSignature.Message)
		return
	}

	var interaction discord.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		log.Warn("malformed interaction payload", "error", err)
		h.WriteError(w, http.StatusBadRequest, "malformed interaction payload")
		return
	}

	resp := h.dispatcher.Dispatch(ctx, &interaction)
	h.WriteJSON(w, http.StatusOK, resp)
}
