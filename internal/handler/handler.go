package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sanctuary-platform/console/backend/internal/config"
	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/moderation"
	"github.com/sanctuary-platform/console/backend/internal/repository"
	"github.com/sanctuary-platform/console/backend/internal/workflow"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	moderation  *moderation.Engine
	workflow    *workflow.Workflow
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, eng *moderation.Engine, wf *workflow.Workflow, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		moderation:  eng,
		workflow:    wf,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// Authentication
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// Everything below requires a logged-in user.
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Route("/update-email", func(r chi.Router) {
				r.Post("/require", h.RequireUpdateEmail)
				r.Post("/confirm", h.ConfirmUpdateEmail)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/password", h.UpdateUserPassword)
			})
		})

		r.Route("/sites", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateSite)
			r.Get("/", h.GetAllSites)
			r.Get("/{id}", h.GetSite)
		})

		// One route tree per content kind, all served by the same handlers.
		r.Route("/content/{kind}", func(r chi.Router) {
			r.Use(h.contentKind)
			r.With(h.myInfo, h.preventDeactivatedUser).Post("/", h.SubmitContent)
			r.Get("/", h.GetContentItems)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.contentItem)
				r.Get("/", h.GetContentItem)
				r.Get("/audit", h.GetContentItemAudit)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/approve", h.ApproveContentItem)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/reject", h.RejectContentItem)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Patch("/active", h.SetContentItemActive)
			})
		})

		r.Route("/shift-submissions", func(r chi.Router) {
			r.With(h.myInfo, h.preventDeactivatedUser).Post("/", h.CreateShiftSubmission)
			r.With(h.myInfo).Get("/mine", h.GetMyShiftSubmissions)
			r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Get("/", h.GetShiftSubmissionsBySite)
			r.Get("/today", h.GetTodayShifts)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftSubmission)
				r.Get("/", h.GetShiftSubmission)
				r.Get("/audit", h.GetShiftSubmissionAudit)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/approve", h.ApproveShiftSubmission)
				r.With(h.RequiredRole([]domain.Role{domain.RoleManager, domain.RoleAdmin})).Post("/reject", h.RejectShiftSubmission)
			})
		})
	})
}
