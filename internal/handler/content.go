package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/moderation"
)

// currentUserID reads the authenticated user's id out of the JWT subject the
// auth middleware stored on the context.
func (h *Handler) currentUserID(r *http.Request) (int64, error) {
	subString := r.Context().Value(SubCtxKey).(string)
	return strconv.ParseInt(subString, 10, 64)
}

func (h *Handler) SubmitContent(w http.ResponseWriter, r *http.Request) {
	kind := r.Context().Value(ContentKindCtx).(domain.ContentKind)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if myInfo.SiteID == nil {
		h.errorResponse(w, r, "your account is not bound to a site")
		return
	}

	var req struct {
		Payload json.RawMessage `json:"payload" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	item, err := h.moderation.Submit(moderation.SubmitRequest{
		SiteID:   *myInfo.SiteID,
		Kind:     kind,
		Payload:  req.Payload,
		AuthorID: myInfo.ID,
	})
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "content submitted for review", item)
}

func (h *Handler) GetContentItems(w http.ResponseWriter, r *http.Request) {
	kind := r.Context().Value(ContentKindCtx).(domain.ContentKind)

	siteIDParam := r.URL.Query().Get("siteID")
	siteID, err := strconv.ParseInt(siteIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid site id")
		return
	}

	items, err := h.repository.GetContentItemsBySiteAndKind(siteID, kind)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// Optional status filter, e.g. ?status=pending for the review queue.
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]*domain.ContentItem, 0, len(items))
		for _, item := range items {
			if item.Status == domain.ContentStatus(status) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	h.successResponse(w, r, "content items retrieved", items)
}

func (h *Handler) GetContentItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(ContentItemCtx).(*domain.ContentItem)
	h.successResponse(w, r, "content item retrieved", item)
}

func (h *Handler) GetContentItemAudit(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(ContentItemCtx).(*domain.ContentItem)

	records, err := h.repository.GetAuditRecords(domain.EntityKindContentItem, item.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "audit trail retrieved", records)
}

func (h *Handler) ApproveContentItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(ContentItemCtx).(*domain.ContentItem)

	reviewerID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	approved, err := h.moderation.Approve(item.ID, reviewerID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "content item approved", approved)
}

func (h *Handler) RejectContentItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(ContentItemCtx).(*domain.ContentItem)

	var req struct {
		Reason string `json:"reason" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	reviewerID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	rejected, err := h.moderation.Reject(item.ID, reviewerID, req.Reason)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "content item rejected", rejected)
}

func (h *Handler) SetContentItemActive(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(ContentItemCtx).(*domain.ContentItem)

	var req struct {
		IsActive *bool `json:"isActive" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	actorID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	updated, err := h.moderation.SetActive(item.ID, *req.IsActive, actorID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "content item updated", updated)
}
