package seed

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/config"
	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/sanctuary-platform/console/backend/internal/moderation"
	"github.com/sanctuary-platform/console/backend/internal/repository"
	"github.com/sanctuary-platform/console/backend/internal/utils"
	"github.com/sanctuary-platform/console/backend/internal/workflow"
)

var demoSites = []domain.Site{
	{Name: "Sanctuary of the Rock", Slug: "sanctuary-rock", City: "Monte Real"},
	{Name: "Hermitage of the Pines", Slug: "hermitage-pines", City: "Vila Serena"},
	{Name: "Chapel of the Springs", Slug: "chapel-springs", City: "Fonte Clara"},
}

var allKinds = []domain.ContentKind{
	domain.KindMedia,
	domain.KindMassSchedule,
	domain.KindEvent,
	domain.KindNearbyPlace,
}

// SeedDemoData populates a development database with sites, staff, content in
// every review state and shift submissions. Writes go through the moderation
// engine and the shift workflow so the seeded data obeys the same rules as
// live traffic.
func SeedDemoData(cfg *config.Config, repo *repository.Repository) {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		slog.Error("invalid schedule timezone", "timezone", cfg.Schedule.Timezone, "error", err)
		return
	}

	eng := moderation.NewEngine(repo)
	wf := workflow.New(repo, loc)

	for i := range demoSites {
		site := demoSites[i]
		if err := repo.CreateSite(&site); err != nil {
			slog.Error("failed to seed site", "slug", site.Slug, "error", err)
			continue
		}

		guides, manager := seedSiteStaff(cfg, repo, site.ID)
		if manager == nil || len(guides) == 0 {
			continue
		}

		seedSiteContent(eng, site.ID, guides, manager)
		seedSiteSubmissions(wf, loc, guides, manager)
	}

	slog.Info("demo data seeded", "sites", len(demoSites))
}

func seedSiteStaff(cfg *config.Config, repo *repository.Repository, siteID int64) ([]*domain.User, *domain.User) {
	guides := make([]*domain.User, 0, 3)

	for i := 0; i < 3; i++ {
		user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("failed to generate guide", "error", err)
			continue
		}
		user.Role = domain.RoleGuide
		user.SiteID = &siteID

		if err := repo.CreateUser(user); err != nil {
			slog.Error("failed to seed guide", "username", user.Username, "error", err)
			continue
		}
		guides = append(guides, user)
	}

	manager, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
	if err != nil {
		slog.Error("failed to generate manager", "error", err)
		return guides, nil
	}
	manager.Role = domain.RoleManager
	manager.SiteID = &siteID

	if err := repo.CreateUser(manager); err != nil {
		slog.Error("failed to seed manager", "username", manager.Username, "error", err)
		return guides, nil
	}

	return guides, manager
}

func seedSiteContent(eng *moderation.Engine, siteID int64, guides []*domain.User, manager *domain.User) {
	for _, kind := range allKinds {
		for i := 0; i < 4; i++ {
			author := guides[rand.Intn(len(guides))]

			item, err := eng.Submit(moderation.SubmitRequest{
				SiteID:   siteID,
				Kind:     kind,
				Payload:  utils.GenerateRandomContentPayload(kind),
				AuthorID: author.ID,
			})
			if err != nil {
				slog.Error("failed to seed content item", "kind", kind, "error", err)
				continue
			}

			// Leave a quarter pending, approve half, reject the rest, and
			// deactivate the occasional approved item.
			switch i % 4 {
			case 0:
				// stays pending
			case 1, 2:
				if _, err := eng.Approve(item.ID, manager.ID); err != nil {
					slog.Error("failed to approve seeded item", "id", item.ID, "error", err)
					continue
				}
				if i == 2 && rand.Intn(2) == 0 {
					if _, err := eng.SetActive(item.ID, false, manager.ID); err != nil {
						slog.Error("failed to deactivate seeded item", "id", item.ID, "error", err)
					}
				}
			case 3:
				if _, err := eng.Reject(item.ID, manager.ID, "does not meet publication guidelines"); err != nil {
					slog.Error("failed to reject seeded item", "id", item.ID, "error", err)
				}
			}
		}
	}
}

func seedSiteSubmissions(wf *workflow.Workflow, loc *time.Location, guides []*domain.User, manager *domain.User) {
	weekStart := workflow.WeekAnchor(time.Now(), loc)

	for i, guide := range guides {
		sub, err := wf.Create(workflow.CreateRequest{
			GuideID:        guide.ID,
			SiteID:         *guide.SiteID,
			SubmissionType: domain.SubmissionTypeNew,
			WeekStartDate:  weekStart,
			Shifts:         utils.GenerateRandomShifts(),
		})
		if err != nil {
			slog.Error("failed to seed shift submission", "guide", guide.Username, "error", err)
			continue
		}

		// First guide keeps a pending submission, the rest get reviewed.
		if i == 0 {
			continue
		}

		if _, err := wf.Approve(sub.ID, manager.ID); err != nil {
			slog.Error("failed to approve seeded submission", "id", sub.ID, "error", err)
			continue
		}

		// One guide also files a change on top of the approved schedule.
		if i == 1 {
			change, err := wf.Create(workflow.CreateRequest{
				GuideID:        guide.ID,
				SiteID:         *guide.SiteID,
				SubmissionType: domain.SubmissionTypeChange,
				WeekStartDate:  weekStart,
				Shifts:         utils.GenerateRandomShifts(),
			})
			if err != nil {
				slog.Error("failed to seed change submission", "guide", guide.Username, "error", err)
				continue
			}
			if _, err := wf.Reject(change.ID, manager.ID, "please keep at least one weekend shift"); err != nil {
				slog.Error("failed to reject seeded change", "id", change.ID, "error", err)
			}
		}
	}
}
