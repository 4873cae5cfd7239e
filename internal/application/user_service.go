package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/spotifood/spotifood-api/internal/domain/entity"
	repo "github.com/spotifood/spotifood-api/internal/domain/repository"
	"github.com/spotifood/spotifood-api/pkg/helpers"
)

// UserService is the user directory: lookups, registration, authentication,
// password changes and profile updates over the persistence layer.
// GCS and Elasticsearch are optional collaborators; every use is nil-guarded.
type UserService struct {
	Repo         repo.UserRepository
	GCS          *storage.Client
	GCSBucket    string
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(r repo.UserRepository, gcs *storage.Client, gcsBucket string, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{
		Repo:         r,
		GCS:          gcs,
		GCSBucket:    gcsBucket,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
	}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
}

// Register hashes the plaintext password and persists a new active customer
// account. The email pre-check is racy by itself; the unique constraint on
// users.email is the real guarantee and also surfaces as ErrEmailTaken here.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if _, err := s.Repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    hash,
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		IsActive:    true,
		Role:        entity.RoleCustomer,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// Authenticate returns the user iff the email exists and the password
// matches. Both failure causes collapse into ErrInvalidCredentials so the
// response cannot be used for account enumeration.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword re-hashes and persists. It does not verify the current
// password; the change-password endpoint authenticates it first.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, newPassword string) error {
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context, skip, limit int) ([]entity.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}
	return s.Repo.List(ctx, skip, limit)
}

// UpdateUserInput carries a partial update; nil fields are left untouched
// (exclude-unset semantics).
type UpdateUserInput struct {
	Username    *string
	Email       *string
	FullName    *string
	PhoneNumber *string
	IsActive    *bool
	Role        *string
}

func (s *UserService) Update(ctx context.Context, id int64, in UpdateUserInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.FullName != nil {
		u.FullName = *in.FullName
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = *in.PhoneNumber
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Role != nil {
		role, err := entity.ParseRole(*in.Role)
		if err != nil {
			return nil, ErrUnknownRole
		}
		u.Role = role
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// UploadAvatar stores the image in GCS under avatars/<uid>/<uuid><ext> and
// persists the public URL on the profile.
func (s *UserService) UploadAvatar(ctx context.Context, userID int64, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", strconv.FormatInt(userID, 10), uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", err
	}
	_ = s.indexUser(ctx, u)
	return url, nil
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"full_name":    u.FullName,
		"phone_number": u.PhoneNumber,
		"role":         u.Role.String(),
		"is_active":    u.IsActive,
		"created_at":   u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":   u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// Search performs a multi_match over username, email and full name.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "username^2", "full_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
