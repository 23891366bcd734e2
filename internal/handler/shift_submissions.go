package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/workflow"
)

func (h *Handler) CreateShiftSubmission(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if myInfo.SiteID == nil {
		h.errorResponse(w, r, "your account is not bound to a site")
		return
	}

	var req struct {
		SubmissionType string `json:"submissionType" validate:"required,oneof=new change"`
		WeekStartDate  string `json:"weekStartDate" validate:"required"`
		Shifts         []struct {
			DayOfWeek int32  `json:"dayOfWeek"`
			StartTime string `json:"startTime" validate:"required"`
			EndTime   string `json:"endTime" validate:"required"`
		} `json:"shifts" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStartDate)
	if err != nil {
		h.errorResponse(w, r, "invalid week start date, expected YYYY-MM-DD")
		return
	}

	shifts := make([]domain.ShiftDefinition, 0, len(req.Shifts))
	for _, shift := range req.Shifts {
		shifts = append(shifts, domain.ShiftDefinition{
			DayOfWeek: shift.DayOfWeek,
			StartTime: shift.StartTime,
			EndTime:   shift.EndTime,
		})
	}

	sub, err := h.workflow.Create(workflow.CreateRequest{
		GuideID:        myInfo.ID,
		SiteID:         *myInfo.SiteID,
		SubmissionType: domain.SubmissionType(req.SubmissionType),
		WeekStartDate:  weekStart,
		Shifts:         shifts,
	})
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift submission created", sub)
}

func (h *Handler) GetMyShiftSubmissions(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	subs, err := h.repository.GetShiftSubmissionsByGuide(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift submissions retrieved", subs)
}

func (h *Handler) GetShiftSubmissionsBySite(w http.ResponseWriter, r *http.Request) {
	siteIDParam := r.URL.Query().Get("siteID")
	siteID, err := strconv.ParseInt(siteIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid site id")
		return
	}

	subs, err := h.repository.GetShiftSubmissionsBySite(siteID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift submissions retrieved", subs)
}

func (h *Handler) GetShiftSubmission(w http.ResponseWriter, r *http.Request) {
	sub := r.Context().Value(ShiftSubmissionCtx).(*domain.ShiftSubmission)
	h.successResponse(w, r, "shift submission retrieved", sub)
}

func (h *Handler) GetShiftSubmissionAudit(w http.ResponseWriter, r *http.Request) {
	sub := r.Context().Value(ShiftSubmissionCtx).(*domain.ShiftSubmission)

	records, err := h.repository.GetAuditRecords(domain.EntityKindShiftSubmission, sub.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "audit trail retrieved", records)
}

func (h *Handler) ApproveShiftSubmission(w http.ResponseWriter, r *http.Request) {
	sub := r.Context().Value(ShiftSubmissionCtx).(*domain.ShiftSubmission)

	reviewerID, err := h.currentUserID(r)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	approved, err := h.workflow.Approve(sub.ID, reviewerID)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.dropTodayShiftsCache(approved.SiteID)
	h.notifySubmissionReviewed(r, approved, "approved", "")

	h.successResponse(w, r, "shift submission approved", approved)
}

func (h *Handler) RejectShiftSubmission(w http.ResponseWriter, r *http.Request) {
	sub := r.Context().Value(ShiftSubmissionCtx).(*domain.ShiftSubmission)

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

	rejected, err := h.workflow.Reject(sub.ID, reviewerID, req.Reason)
	if err != nil {
		h.domainError(w, r, err)
		return
	}

	h.notifySubmissionReviewed(r, rejected, "rejected", req.Reason)

	h.successResponse(w, r, "shift submission rejected", rejected)
}

func (h *Handler) GetTodayShifts(w http.ResponseWriter, r *http.Request) {
	siteIDParam := r.URL.Query().Get("siteID")
	siteID, err := strconv.ParseInt(siteIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid site id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	// The board is the most requested view, so it is served from redis and
	// recomputed at most once per TTL.
	cacheKey := fmt.Sprintf("today_shifts_site_%d", siteID)
	if cached, err := h.redisClient.Get(ctx, cacheKey).Result(); err == nil {
		var shifts []workflow.TodayShift
		if err := json.Unmarshal([]byte(cached), &shifts); err == nil {
			h.successResponse(w, r, "today's shifts retrieved", shifts)
			return
		}
	} else if !errors.Is(err, redis.Nil) {
		h.internalServerError(w, r, err)
		return
	}

	shifts, err := h.workflow.TodayShifts(siteID, time.Now())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	encoded, err := json.Marshal(shifts)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.redisClient.Set(ctx, cacheKey, encoded, time.Duration(h.config.Schedule.TodayCacheTTL)*time.Second).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "today's shifts retrieved", shifts)
}

// dropTodayShiftsCache invalidates the cached board after an approval changes
// the site's schedule. A failure here only delays freshness by one TTL, so it
// is logged and swallowed.
func (h *Handler) dropTodayShiftsCache(siteID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Minute)
	defer cancel()

	if err := h.redisClient.Del(ctx, fmt.Sprintf("today_shifts_site_%d", siteID)).Err(); err != nil {
		slog.Error("failed to drop today shifts cache", "siteID", siteID, "error", err)
	}
}

// notifySubmissionReviewed emails the guide about the review outcome. Mail
// delivery is best-effort: the review itself already committed.
func (h *Handler) notifySubmissionReviewed(r *http.Request, sub *domain.ShiftSubmission, outcome string, reason string) {
	guide, err := h.repository.GetUserByID(sub.GuideID)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	mailMessage := domain.MailMessage{
		Type: "submission_reviewed",
		To:   guide.Email,
		Data: domain.SubmissionReviewedMailData{
			FullName:      guide.FullName,
			WeekStartDate: sub.WeekStartDate.Format("2006-01-02"),
			Outcome:       outcome,
			Reason:        reason,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.logInternalServerError(r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		h.logInternalServerError(r, err)
	}
}
