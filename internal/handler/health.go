package handler

import "net/http"

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.Ping(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "服务正常", nil)
}
