package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"supplier-portal/internal/models"
)

// Storage keys, shared with the web front end.
const (
	KeySupplierToken    = "supplier_token"
	KeyTokenType        = "token_type"
	KeyUserType         = "user_type"
	KeySupplierUser     = "supplier_user"
	KeyAdminUser        = "admin_user"
	KeyVerificationData = "verificationData"
	KeyProfileDraft     = "profile_draft"
)

const DefaultTokenType = "Bearer"

// Session is a typed view over a Store.
type Session struct {
	store Store
}

func New(store Store) *Session {
	return &Session{store: store}
}

// Token returns the stored token and its type. ErrNotFound means no user is
// signed in.
func (s *Session) Token(ctx context.Context) (string, string, error) {
	token, err := s.store.Get(ctx, KeySupplierToken)
	if err != nil {
		return "", "", err
	}
	if token == "" {
		return "", "", ErrNotFound
	}
	tokenType, err := s.store.Get(ctx, KeyTokenType)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", "", err
	}
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	return token, tokenType, nil
}

// HasToken reports whether a token is stored. Store errors count as no.
func (s *Session) HasToken(ctx context.Context) bool {
	_, _, err := s.Token(ctx)
	return err == nil
}

// SaveLogin persists token, token type, user type and the cached user.
func (s *Session) SaveLogin(ctx context.Context, auth *models.AuthResponse) error {
	if !auth.HasSession() {
		return fmt.Errorf("auth response carries no token")
	}
	tokenType := auth.TokenType
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	userType := auth.UserType
	if userType == "" {
		userType = models.UserTypeSupplier
	}

	pairs := [][2]string{
		{KeySupplierToken, auth.Token},
		{KeyTokenType, tokenType},
		{KeyUserType, string(userType)},
	}
	if len(auth.User) > 0 {
		userKey := KeySupplierUser
		if userType == models.UserTypeAdmin {
			userKey = KeyAdminUser
		}
		pairs = append(pairs, [2]string{userKey, string(auth.User)})
	}

	for _, kv := range pairs {
		if err := s.store.Set(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// UserType returns the account type stored at login.
func (s *Session) UserType(ctx context.Context) (models.UserType, error) {
	v, err := s.store.Get(ctx, KeyUserType)
	if err != nil {
		return "", err
	}
	return models.UserType(v), nil
}

// User returns the cached user of the signed-in session.
func (s *Session) User(ctx context.Context) (*models.SessionUser, error) {
	userType, err := s.store.Get(ctx, KeyUserType)
	if err != nil {
		return nil, err
	}
	key := KeySupplierUser
	if models.UserType(userType) == models.UserTypeAdmin {
		key = KeyAdminUser
	}
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return models.DecodeSessionUser(json.RawMessage(raw), models.UserType(userType))
}

// Clear removes every session key, the logout path.
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx,
		KeySupplierToken, KeyTokenType, KeyUserType,
		KeySupplierUser, KeyAdminUser,
		KeyVerificationData, KeyProfileDraft,
	)
}

// Cookies mirrors the route-protection keys as cookies. Missing keys are
// emitted as expired cookies so a stale browser jar gets cleared.
func (s *Session) Cookies(ctx context.Context) ([]*http.Cookie, error) {
	keys := []string{KeySupplierToken, KeyTokenType, KeyUserType}
	cookies := make([]*http.Cookie, 0, len(keys))
	for _, k := range keys {
		v, err := s.store.Get(ctx, k)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		c := &http.Cookie{
			Name:     k,
			Value:    v,
			Path:     "/",
			SameSite: http.SameSiteLaxMode,
		}
		if v == "" {
			c.MaxAge = -1
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// SaveVerification stores the registration hand-off for the wizard.
func (s *Session) SaveVerification(ctx context.Context, v models.VerificationData) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, KeyVerificationData, string(data))
}

// TakeVerification returns the hand-off once; later calls get ErrNotFound.
func (s *Session) TakeVerification(ctx context.Context) (*models.VerificationData, error) {
	raw, err := s.store.Take(ctx, KeyVerificationData)
	if err != nil {
		return nil, err
	}
	var v models.VerificationData
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decode verification data: %w", err)
	}
	return &v, nil
}

// SaveDraft persists the wizard form.
func (s *Session) SaveDraft(ctx context.Context, form *models.ProfileFormData) error {
	data, err := models.MarshalDraft(form)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, KeyProfileDraft, string(data))
}

// LoadDraft returns the saved wizard form, validated.
func (s *Session) LoadDraft(ctx context.Context) (*models.ProfileFormData, error) {
	raw, err := s.store.Get(ctx, KeyProfileDraft)
	if err != nil {
		return nil, err
	}
	return models.LoadDraft([]byte(raw))
}

// DiscardDraft drops the saved form after a successful submission.
func (s *Session) DiscardDraft(ctx context.Context) error {
	return s.store.Delete(ctx, KeyProfileDraft)
}
