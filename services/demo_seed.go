package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/repositories"
)

const (
	DemoClubCode = "DEMO123"
	DemoClubName = "Ace Badminton Club"
)

type demoMember struct {
	name   string
	rating int
	role   models.MemberRole
}

var demoMembers = []demoMember{
	{"Alice Johnson", 1250, models.RoleAdmin},
	{"Bob Smith", 1180, models.RoleMember},
	{"Carol Davis", 1320, models.RoleAdmin},
	{"David Wilson", 1150, models.RoleMember},
	{"Emma Thompson", 1390, models.RoleMember},
	{"Frank Rodriguez", 1095, models.RoleMember},
	{"Grace Kim", 1275, models.RoleMember},
	{"Henry Chen", 1420, models.RoleMember},
	{"Isabella Martinez", 1165, models.RoleMember},
	{"James Anderson", 1340, models.RoleMember},
	{"Katie O'Brien", 1220, models.RoleMember},
	{"Lucas Singh", 1380, models.RoleMember},
	{"Maya Patel", 1135, models.RoleMember},
	{"Nathan Brooks", 1290, models.RoleMember},
	{"Olivia Taylor", 1460, models.RoleMember},
	{"Ryan Murphy", 1070, models.RoleMember},
	{"Sophia Lee", 1310, models.RoleMember},
	{"Thomas Wright", 1195, models.RoleMember},
	{"Victoria Clark", 1355, models.RoleMember},
	{"William Zhang", 1125, models.RoleMember},
}

// SeedDemoClub creates the demo club once. Its members start with preset
// ratings and no games, so a replay puts them back to the default rating.
func SeedDemoClub(ctx context.Context, store *repositories.Store, logger *slog.Logger) error {
	if _, err := store.Clubs.GetByCode(ctx, DemoClubCode); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrClubNotFound) {
		return err
	}

	err := store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		club := &models.Club{Code: DemoClubCode, Name: DemoClubName, Courts: models.DefaultCourts, Tier: models.TierPremium}
		if err := store.Clubs.Create(ctx, exec, club); err != nil {
			return err
		}
		for _, dm := range demoMembers {
			m := &models.Member{ClubID: club.ID, Name: dm.name, Role: dm.role, Rating: dm.rating}
			if err := store.Members.Create(ctx, exec, m); err != nil {
				return fmt.Errorf("failed to seed member %q: %w", dm.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo club: %w", err)
	}
	logger.Info("demo club seeded", slog.String("club", DemoClubCode), slog.Int("members", len(demoMembers)))
	return nil
}
