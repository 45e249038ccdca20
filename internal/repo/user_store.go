package repo

import (
	"context"
	"slices"
	"time"

	"fleet/internal/logs"
	"fleet/internal/models"
)

const userSelect = `
SELECT
	users.email AS email,
	users.admin AS admin,
	users.subscription_ends AS subscription_ends,
	permissions.permission AS permission
FROM users
LEFT JOIN user_permissions AS permissions ON users.email = permissions.user_email`

type userRow struct {
	Email            string     `gorm:"column:email"`
	Admin            bool       `gorm:"column:admin"`
	SubscriptionEnds *time.Time `gorm:"column:subscription_ends"`
	Permission       *string    `gorm:"column:permission"`
}

// FindUserByEmail возвращает (nil, nil), если пользователя нет.
// includeDevices=false оставляет Devices пустым (nil) для ленивой загрузки.
func (s *Store) FindUserByEmail(ctx context.Context, email string, includeDevices bool) (*models.User, error) {
	log := logs.FromContext(ctx).WithField("email", email)
	log.WithField("include_devices", includeDevices).Debug("find user by email")

	if err := checkEmail(email); err != nil {
		return nil, err
	}
	var rows []userRow
	q := userSelect + ` WHERE users.email = ? ORDER BY permissions.permission`
	if err := s.raw(ctx, &rows, q, email); err != nil {
		return nil, s.fail(ctx, "find user by email", err)
	}
	users := groupUsers(rows, s.now())
	if len(users) == 0 {
		log.Debug("user not found")
		return nil, nil
	}
	user := users[0]

	if includeDevices {
		devices, err := s.FindDevicesByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		user.Devices = devices
	}
	log.WithField("user", user).Debug("found user")
	return user, nil
}

func (s *Store) FindAllUsers(ctx context.Context) ([]*models.User, error) {
	log := logs.FromContext(ctx)
	log.Debug("find all users")

	var rows []userRow
	if err := s.raw(ctx, &rows, userSelect+` ORDER BY users.email, permissions.permission`); err != nil {
		return nil, s.fail(ctx, "find all users", err)
	}
	users := groupUsers(rows, s.now())
	log.WithField("users", len(users)).Debug("found users")
	return users, nil
}

// FindExpiredUsers ищет пользователей с подпиской, закончившейся раньше текущего момента.
// SQL отбирает только кандидатов: сравнение времени делает groupUsers, как и для флага
// IsSubscriptionExpired (sqlite сравнивает даты как строки со смещением).
func (s *Store) FindExpiredUsers(ctx context.Context) ([]*models.User, error) {
	log := logs.FromContext(ctx)
	log.Debug("find expired users")

	var rows []userRow
	q := userSelect + ` WHERE users.subscription_ends IS NOT NULL
ORDER BY users.email, permissions.permission`
	if err := s.raw(ctx, &rows, q); err != nil {
		return nil, s.fail(ctx, "find expired users", err)
	}
	users := slices.DeleteFunc(groupUsers(rows, s.now()), func(u *models.User) bool {
		return !u.IsSubscriptionExpired
	})
	log.WithField("users", len(users)).Debug("found expired users")
	return users, nil
}

// groupUsers сворачивает строки user×permission; порядок пользователей и прав по первому появлению.
func groupUsers(rows []userRow, now time.Time) []*models.User {
	out := []*models.User{}
	byEmail := map[string]*models.User{}
	for _, r := range rows {
		u, ok := byEmail[r.Email]
		if !ok {
			u = &models.User{
				Email:                 r.Email,
				IsAdmin:               r.Admin,
				IsSubscriptionExpired: r.SubscriptionEnds != nil && r.SubscriptionEnds.Before(now),
				Permissions:           []string{},
			}
			byEmail[r.Email] = u
			out = append(out, u)
		}
		if r.Permission != nil && *r.Permission != "" && !slices.Contains(u.Permissions, *r.Permission) {
			u.Permissions = append(u.Permissions, *r.Permission)
		}
	}
	return out
}
