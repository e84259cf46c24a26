package users

import (
	"context"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/pagination"
)

var (
	nameRe   = regexp.MustCompile(`^[A-Za-z ]{2,50}$`)
	mobileRe = regexp.MustCompile(`^\d{10}$`)
	validate = validator.New()
)

// Service manages operator accounts.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, filters Filters, params pagination.Params) (*UserList, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*UserDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	fields := pkgerrors.Fields{}
	name := strings.TrimSpace(input.Name)
	checkName(fields, name)
	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		fields.Add("role", "is invalid")
	}
	mobile := strings.TrimSpace(input.MobileNumber)
	checkMobile(fields, mobile)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	checkEmail(fields, email)
	if err := fields.Err(); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Role:         role,
		MobileNumber: mobile,
		Email:        email,
		Status:       enums.RecordStatusActive,
		CreatedBy:    input.CreatedBy,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a user with this mobile number or email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, filters Filters, params pagination.Params) (*UserList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, filters, params, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	rows, next := pagination.Split(rows, params.Limit, func(m models.User) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})

	list := &UserList{Users: make([]UserDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		list.Users = append(list.Users, *FromModel(&rows[i]))
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*UserDTO, error) {
	columns, err := patch.columns()
	if err != nil {
		return nil, err
	}

	found, err := s.repo.Update(ctx, id, columns)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a user with this mobile number or email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.Get(ctx, id)
}

func (p Patch) columns() (map[string]any, error) {
	fields := pkgerrors.Fields{}
	columns := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		checkName(fields, name)
		columns["name"] = name
	}
	if p.Role != nil {
		role, err := enums.ParseUserRole(*p.Role)
		if err != nil {
			fields.Add("role", "is invalid")
		}
		columns["role"] = role
	}
	if p.MobileNumber != nil {
		mobile := strings.TrimSpace(*p.MobileNumber)
		checkMobile(fields, mobile)
		columns["mobile_number"] = mobile
	}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		checkEmail(fields, email)
		columns["email"] = email
	}
	if p.Status != nil {
		status, err := enums.ParseRecordStatus(*p.Status)
		if err != nil {
			fields.Add("status", "is invalid")
		}
		columns["status"] = status
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	return columns, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}

func checkName(fields pkgerrors.Fields, name string) {
	if name == "" {
		fields.Add("name", "is required")
	} else if !nameRe.MatchString(name) {
		fields.Add("name", "must be 2 to 50 letters or spaces")
	}
}

func checkMobile(fields pkgerrors.Fields, mobile string) {
	if !mobileRe.MatchString(mobile) {
		fields.Add("mobile_number", "must be a 10 digit mobile number")
	}
}

func checkEmail(fields pkgerrors.Fields, email string) {
	if email == "" {
		fields.Add("email", "is required")
		return
	}
	if err := validate.Var(email, "email"); err != nil {
		fields.Add("email", "must be a valid email")
	}
}
