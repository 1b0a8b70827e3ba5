package services

import (
	"errors"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// IdentityResolver maps (phone, role) and (id, role) onto the
// role-scoped identity tables. Identities live in separate tables per
// role, so the numeric id in a token is only meaningful with its role
// tag; this is the one place that dispatch happens.
type IdentityResolver struct {
	store storage.Store
}

func NewIdentityResolver(store storage.Store) *IdentityResolver {
	return &IdentityResolver{store: store}
}

// Resolve finds the identity for a verified phone, creating a bare
// record on first contact. Driver and conductor rows created here carry
// only the phone; profile fields arrive later through their own
// handlers.
func (r *IdentityResolver) Resolve(phone, role string) (*models.Principal, error) {
	switch role {
	case models.RoleDriver:
		d, err := r.store.GetDriverByPhone(phone)
		if errors.Is(err, storage.ErrNotFound) {
			d = &models.Driver{Phone: phone}
			if err := r.store.CreateDriver(d); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		return &models.Principal{ID: d.ID, Role: role, Name: d.Name}, nil

	case models.RoleConductor:
		c, err := r.store.GetConductorByPhone(phone)
		if errors.Is(err, storage.ErrNotFound) {
			c = &models.Conductor{Phone: phone}
			if err := r.store.CreateConductor(c); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		return &models.Principal{ID: c.ID, Role: role, Name: c.Name}, nil

	case models.RoleUser, models.RoleOperator:
		u, err := r.store.GetUserByPhone(phone)
		if errors.Is(err, storage.ErrNotFound) {
			u = &models.AppUser{Phone: phone, Role: role}
			if err := r.store.CreateUser(u); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		return &models.Principal{ID: u.ID, Role: role, Name: u.Name}, nil
	}

	return nil, ErrInvalidRole
}

// ResolveByID loads the principal a bearer token points at. Used by the
// auth middleware; a missing row means the token no longer names anyone.
func (r *IdentityResolver) ResolveByID(id uint, role string) (*models.Principal, error) {
	switch role {
	case models.RoleDriver:
		d, err := r.store.GetDriver(id)
		if err != nil {
			return nil, err
		}
		return &models.Principal{ID: d.ID, Role: role, Name: d.Name}, nil

	case models.RoleConductor:
		c, err := r.store.GetConductor(id)
		if err != nil {
			return nil, err
		}
		return &models.Principal{ID: c.ID, Role: role, Name: c.Name}, nil

	case models.RoleUser, models.RoleOperator:
		u, err := r.store.GetUser(id)
		if err != nil {
			return nil, err
		}
		return &models.Principal{ID: u.ID, Role: role, Name: u.Name}, nil
	}

	return nil, ErrInvalidRole
}
