package app

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"category-quiz-service/internal/auth"
	"category-quiz-service/internal/domain"
	"category-quiz-service/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// AccountStore keeps sign-in credentials keyed by email.
type AccountStore interface {
	Create(ctx context.Context, acc domain.Account) error
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	// Delete removes the account with this email if it still belongs to userID.
	Delete(ctx context.Context, email, userID string) error
}

// AttemptLimiter throttles repeated failed sign-ins per key.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Failure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// SignUpRequest is the registration form.
type SignUpRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=64"`
	LastName        string `json:"lastName" validate:"required,max=64"`
	BirthDate       string `json:"birthDate" validate:"required,birthdate"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
}

// Session is the result of a successful sign-in or sign-up.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// AuthService handles sign-up, sign-in and sign-out.
type AuthService struct {
	accounts       AccountStore
	profiles       ProfileStore
	tokens         *auth.Tokens
	limiter        AttemptLimiter
	quizzes        *QuizService
	validate       *validator.Validate
	defaultPicture string
	timeout        time.Duration
	now            func() time.Time
}

// AuthOptions configures an AuthService.
type AuthOptions struct {
	DefaultPicture string
	StoreTimeout   time.Duration
}

func NewAuthService(accounts AccountStore, profiles ProfileStore, tokens *auth.Tokens, limiter AttemptLimiter, quizzes *QuizService, opts AuthOptions) *AuthService {
	return &AuthService{
		accounts:       accounts,
		profiles:       profiles,
		tokens:         tokens,
		limiter:        limiter,
		quizzes:        quizzes,
		validate:       newValidator(),
		defaultPicture: opts.DefaultPicture,
		timeout:        opts.StoreTimeout,
		now:            time.Now,
	}
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

// SignUp registers credentials and creates the user's profile document with zero points.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (Session, error) {
	session, err := s.signUp(ctx, req)
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.AuthAttempts.WithLabelValues("signup", status).Inc()
	return session, err
}

func (s *AuthService) signUp(ctx context.Context, req SignUpRequest) (Session, error) {
	email, ok := normalizeEmail(req.Email)
	if !ok {
		return Session{}, auth.Fail(auth.InvalidEmail)
	}
	if len(req.Password) < auth.MinPasswordLength {
		return Session{}, auth.Fail(auth.WeakPassword)
	}
	if err := validateStruct(s.validate, req); err != nil {
		return Session{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return Session{}, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	userID := uuid.NewString()
	err = s.accounts.Create(ctx, domain.Account{
		UserID:       userID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		return Session{}, auth.Fail(auth.EmailAlreadyInUse)
	}
	if err != nil {
		return Session{}, err
	}

	rec := domain.UserRecord{
		ID:                userID,
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Email:             email,
		BirthDate:         req.BirthDate,
		ProfilePictureURL: s.defaultPicture,
		Points:            make(map[domain.Category]int, len(domain.Categories)),
		Likes:             []string{},
	}
	for _, c := range domain.Categories {
		rec.Points[c] = 0
	}
	if err := s.profiles.Create(ctx, rec); err != nil {
		// the account is useless without its profile; free the email for a retry
		cleanupCtx, cleanupCancel := withStoreTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cleanupCancel()
		if derr := s.accounts.Delete(cleanupCtx, email, userID); derr != nil {
			log.Printf("account %s left without profile: %v (cleanup: %v)", userID, err, derr)
		}
		return Session{}, err
	}
	return s.issue(auth.Principal{UserID: userID, Email: email})
}

// SignIn verifies credentials. Repeated failures for one email yield TooManyRequests.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (Session, error) {
	session, err := s.signIn(ctx, email, password)
	status := "success"
	if err != nil {
		status = string(auth.CodeOf(err))
	}
	metrics.AuthAttempts.WithLabelValues("signin", status).Inc()
	return session, err
}

func (s *AuthService) signIn(ctx context.Context, rawEmail, password string) (Session, error) {
	email, ok := normalizeEmail(rawEmail)
	if !ok {
		return Session{}, auth.Fail(auth.InvalidEmail)
	}

	ctx, cancel := withStoreTimeout(ctx, s.timeout)
	defer cancel()

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		log.Printf("attempt limiter unavailable: %v", err)
	} else if !allowed {
		return Session{}, auth.Fail(auth.TooManyRequests)
	}

	acc, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		s.recordFailure(ctx, email)
		return Session{}, auth.Fail(auth.UserNotFound)
	}
	if err != nil {
		return Session{}, err
	}
	match, err := auth.CheckPassword(acc.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !match {
		s.recordFailure(ctx, email)
		return Session{}, auth.Fail(auth.WrongPassword)
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		log.Printf("reset attempt limiter for %s: %v", email, err)
	}
	return s.issue(auth.Principal{UserID: acc.UserID, Email: acc.Email})
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.Failure(ctx, email); err != nil {
		log.Printf("record failed sign-in for %s: %v", email, err)
	}
}

func (s *AuthService) issue(p auth.Principal) (Session, error) {
	token, err := s.tokens.Issue(p)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, UserID: p.UserID}, nil
}

// Authenticate resolves a bearer token to its principal.
func (s *AuthService) Authenticate(_ context.Context, token string) (auth.Principal, error) {
	return s.tokens.Verify(token)
}

// SignOut tears down the user's session state: any quiz in progress is abandoned
// and its pending transitions are cancelled.
func (s *AuthService) SignOut(ctx context.Context, p auth.Principal) {
	if s.quizzes != nil {
		s.quizzes.Abandon(ctx, p.UserID)
	}
}
