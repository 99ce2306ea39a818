package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"proximity-service/internal/database"
	"proximity-service/internal/models"
	"proximity-service/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService covers the account glue around the engine: registration,
// login, profile, avatar upload.
type UserService struct {
	store     store.UserStore
	minio     *database.MinIOClient
	jwtSecret string
	jwtExpiry time.Duration
}

func NewUserService(st store.UserStore, minio *database.MinIOClient, jwtSecret string, jwtExpiry time.Duration) *UserService {
	return &UserService{
		store:     st,
		minio:     minio,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UID:                uuid.New().String(),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		PhoneNumber:        req.PhoneNumber,
		EmailAddress:       req.EmailAddress,
		PasswordHash:       string(hashed),
		FriendsList:        []string{},
		FriendRequests:     []string{},
		SentFriendRequests: []string{},
		BlockedList:        []string{},
		LocationSharedWith: []string{},
		LocationSharedBy:   []string{},
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	return models.NewUserResponse(user), nil
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.store.FindByEmail(ctx, req.EmailAddress)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateJWT(user)
}

func (s *UserService) generateJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"uid":   user.UID,
		"email": user.EmailAddress,
		"exp":   time.Now().Add(s.jwtExpiry).Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (*models.UserResponse, error) {
	user, err := s.store.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return models.NewUserResponse(user), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, uid string, req *models.UpdateProfileRequest) error {
	if req.FirstName != "" {
		if err := s.store.UpdateField(ctx, uid, store.FieldFirstName, req.FirstName); err != nil {
			return err
		}
	}
	if req.LastName != "" {
		if err := s.store.UpdateField(ctx, uid, store.FieldLastName, req.LastName); err != nil {
			return err
		}
	}
	return nil
}

// UploadAvatar stores the image in MinIO and records its URL on the
// user document.
func (s *UserService) UploadAvatar(ctx context.Context, uid string, file *multipart.FileHeader) (string, error) {
	url, err := s.minio.UploadImage(ctx, file)
	if err != nil {
		return "", err
	}
	if err := s.store.UpdateField(ctx, uid, store.FieldProfilePicture, url); err != nil {
		return "", err
	}
	return url, nil
}
