// Package authz performs inline role and ownership checks. Authorization
// here is deliberately plain column reads (platform role, mosque_admins
// rows, record ownership) rather than a delegated policy engine.
package authz

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
	"go.uber.org/fx"
)

var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated caller, resolved once per request.
type Actor struct {
	UserID        snowflake.ID
	PlatformAdmin bool
}

type Checker struct {
	mosques mosquedomain.Repository
}

func NewChecker(mosques mosquedomain.Repository) *Checker {
	return &Checker{mosques: mosques}
}

// CanAdministerMosque reports whether the actor is the mosque's admin or a
// platform admin.
func (c *Checker) CanAdministerMosque(ctx context.Context, actor Actor, mosqueID snowflake.ID) (bool, error) {
	if actor.PlatformAdmin {
		return true, nil
	}
	return c.mosques.IsAdmin(ctx, mosqueID, actor.UserID)
}

// RequireMosqueAdmin fails with ErrForbidden unless the actor may administer
// the mosque.
func (c *Checker) RequireMosqueAdmin(ctx context.Context, actor Actor, mosqueID snowflake.ID) error {
	ok, err := c.CanAdministerMosque(ctx, actor, mosqueID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// RequireOwnerOrMosqueAdmin admits the record owner, the mosque's admin, or
// a platform admin.
func (c *Checker) RequireOwnerOrMosqueAdmin(ctx context.Context, actor Actor, ownerID, mosqueID snowflake.ID) error {
	if actor.UserID == ownerID {
		return nil
	}
	return c.RequireMosqueAdmin(ctx, actor, mosqueID)
}

// RequireOwner admits only the record owner.
func (c *Checker) RequireOwner(actor Actor, ownerID snowflake.ID) error {
	if actor.UserID != ownerID {
		return ErrForbidden
	}
	return nil
}

// RequirePlatformAdmin admits only platform admins.
func (c *Checker) RequirePlatformAdmin(actor Actor) error {
	if !actor.PlatformAdmin {
		return ErrForbidden
	}
	return nil
}

// Module provides the authorization checker.
var Module = fx.Module("authz",
	fx.Provide(NewChecker),
)
