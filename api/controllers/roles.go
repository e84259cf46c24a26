package controllers

import (
	"net/http"

	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/api/validators"
	"github.com/angelmondragon/stockroom-backend/internal/roles"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

func RoleList(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("roles"))
			return
		}
		rows, err := svc.ListRoles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func FeatureList(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("roles"))
			return
		}
		rows, err := svc.ListFeatures(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func PrivilegeList(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("roles"))
			return
		}
		rows, err := svc.ListPrivileges(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func RolePrivilegeAssign(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("roles"))
			return
		}

		var body roles.AssignInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Assign(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "privilege assigned")
	}
}

// RolePrivilegeList lists the privileges granted to {role_id} on {feature_id}.
func RolePrivilegeList(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("roles"))
			return
		}

		roleID, err := validators.ParseURLUUID(r, "role_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		featureID, err := validators.ParseURLUUID(r, "feature_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.PrivilegesFor(r.Context(), roleID, featureID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func RolePrivilegeRevoke(svc roles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("roles"))
			return
		}

		roleID, err := validators.ParseURLUUID(r, "role_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		featureID, err := validators.ParseURLUUID(r, "feature_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		privilegeID, err := validators.ParseURLUUID(r, "privilege_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := roles.AssignInput{RoleID: roleID, FeatureID: featureID, PrivilegeID: privilegeID}
		if err := svc.Revoke(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "privilege revoked")
	}
}
