package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxNameLength     = 20
	maxTitleLength    = 120
	maxQuestionLength = 280
	maxTeamNameLength = 32
	minGamePlayers    = 1
	maxGamePlayers    = 32
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("playername", func(fl validator.FieldLevel) bool {
			_, err := validatePlayerName(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("gametitle", func(fl validator.FieldLevel) bool {
			_, err := validateTitle(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("gamequestion", func(fl validator.FieldLevel) bool {
			_, err := validateQuestion(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("teamname", func(fl validator.FieldLevel) bool {
			_, err := validateTeamName(fl.Field().String())
			return err == nil
		})
	})
}

func validatePlayerName(name string) (string, error) {
	return validateText("player name", name, maxNameLength)
}

func validateTitle(title string) (string, error) {
	return validateText("title", title, maxTitleLength)
}

func validateQuestion(question string) (string, error) {
	trimmed := normalizeText(question)
	if trimmed == "" {
		return "", errors.New("question is required")
	}
	if len(trimmed) > maxQuestionLength {
		return "", fmt.Errorf("question must be %d characters or fewer", maxQuestionLength)
	}
	return trimmed, nil
}

func validateTeamName(name string) (string, error) {
	return validateText("team name", name, maxTeamNameLength)
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}
