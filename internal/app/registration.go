package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"exam-quiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name       string `json:"name" validate:"required"`
	RegisterNo string `json:"registerNo" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
}

// Registration is the outcome of Register. IsExisting is set when the
// registerNo or email matched a user that was already on file.
type Registration struct {
	User       domain.User
	IsExisting bool
}

// Register signs a user up once; repeated sign-ups with a known registerNo or email log the user in instead.
func (s *QuizService) Register(ctx context.Context, in RegisterInput) (Registration, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.RegisterNo = strings.TrimSpace(in.RegisterNo)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "email" {
			return Registration{}, domain.Invalid("A valid email address is required")
		}
		return Registration{}, domain.Invalid("Name, Register Number and Email are required")
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return Registration{}, fmt.Errorf("load settings: %w", err)
	}
	if !settings.IsActive {
		return Registration{}, domain.ErrQuizInactive
	}

	if existing, ok, err := s.findExisting(ctx, in); err != nil || ok {
		return Registration{User: existing, IsExisting: ok}, err
	}

	user, err := s.store.CreateUser(ctx, domain.User{
		Name:              in.Name,
		RegisterNo:        in.RegisterNo,
		Email:             in.Email,
		RegisteredAt:      s.now(),
		AssignedQuestions: []string{},
		Responses:         []domain.Response{},
	})
	if errors.Is(err, domain.ErrUserExists) {
		// lost a race with a concurrent sign-up for the same person
		existing, ok, ferr := s.findExisting(ctx, in)
		if ferr != nil {
			return Registration{}, ferr
		}
		if ok {
			return Registration{User: existing, IsExisting: true}, nil
		}
	}
	if err != nil {
		return Registration{}, err
	}

	s.log.Info("user registered", zap.String("userId", user.ID), zap.String("registerNo", user.RegisterNo))
	return Registration{User: user}, nil
}

func (s *QuizService) findExisting(ctx context.Context, in RegisterInput) (domain.User, bool, error) {
	user, err := s.store.FindUserByRegisterNo(ctx, in.RegisterNo)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, false, err
	}
	user, err = s.store.FindUserByEmail(ctx, in.Email)
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, false, err
	}
	return domain.User{}, false, nil
}

// Check reports whether the user behind registerNo may still take the quiz.
func (s *QuizService) Check(ctx context.Context, registerNo string) (domain.User, error) {
	user, err := s.store.FindUserByRegisterNo(ctx, strings.TrimSpace(registerNo))
	if err != nil {
		return domain.User{}, err
	}
	if err := s.guard.Check(user); err != nil {
		return user, err
	}
	return user, nil
}
