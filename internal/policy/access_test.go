package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/bloom-gym/internal/models"
)

func TestAuthorize(t *testing.T) {
	booking := &models.Booking{ID: "b1", OwnerID: "owner", Status: models.StatusBooked}

	owner := models.Identity{UserID: "owner", Role: models.RoleUser}
	stranger := models.Identity{UserID: "stranger", Role: models.RoleUser}
	premium := models.Identity{UserID: "premium", Role: models.RolePremium}
	moderator := models.Identity{UserID: "moderator", Role: models.RoleModerator}
	admin := models.Identity{UserID: "admin", Role: models.RoleAdmin}

	tests := []struct {
		name    string
		action  Action
		who     models.Identity
		wantErr bool
	}{
		{name: "owner reads", action: ActionRead, who: owner},
		{name: "admin reads", action: ActionRead, who: admin},
		{name: "stranger cannot read", action: ActionRead, who: stranger, wantErr: true},
		{name: "moderator cannot read others", action: ActionRead, who: moderator, wantErr: true},
		{name: "premium cannot read others", action: ActionRead, who: premium, wantErr: true},
		{name: "owner updates", action: ActionUpdate, who: owner},
		{name: "admin updates", action: ActionUpdate, who: admin},
		{name: "stranger cannot update", action: ActionUpdate, who: stranger, wantErr: true},
		{name: "moderator cannot update others", action: ActionUpdate, who: moderator, wantErr: true},
		{name: "owner cannot delete", action: ActionDelete, who: owner, wantErr: true},
		{name: "moderator cannot delete", action: ActionDelete, who: moderator, wantErr: true},
		{name: "admin deletes", action: ActionDelete, who: admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.action, tt.who, booking)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrForbidden)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCanListAll(t *testing.T) {
	assert.NoError(t, CanListAll(models.RoleAdmin))
	assert.NoError(t, CanListAll(models.RoleModerator))
	assert.ErrorIs(t, CanListAll(models.RoleUser), models.ErrForbidden)
	assert.ErrorIs(t, CanListAll(models.RolePremium), models.ErrForbidden)
}
