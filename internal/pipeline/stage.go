package pipeline

import (
	"context"
	"errors"
	"strings"
)

// Stage is one text-transform step applied to a scene's concatenated text.
type Stage interface {
	// Name identifies the stage in logs.
	Name() string
	// Suffix is appended to the output filename for this stage.
	Suffix() string
	Transform(ctx context.Context, text string) (string, error)
}

// Corrector fixes speech-to-text errors in a block of text.
type Corrector interface {
	Correct(ctx context.Context, text string, contextBefore, contextAfter []string) (string, error)
}

// Translator renders a block of text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string, contextBefore, contextAfter []string) (string, error)
}

type correctionStage struct {
	corrector Corrector
}

// NewCorrectionStage wraps a Corrector as a pipeline stage.
func NewCorrectionStage(c Corrector) (Stage, error) {
	if c == nil {
		return nil, errors.New("corrector is required")
	}
	return &correctionStage{corrector: c}, nil
}

func (s *correctionStage) Name() string { return "correct" }

func (s *correctionStage) Suffix() string { return "_corrected" }

func (s *correctionStage) Transform(ctx context.Context, text string) (string, error) {
	return s.corrector.Correct(ctx, text, nil, nil)
}

type translationStage struct {
	translator Translator
	targetLang string
}

// NewTranslationStage wraps a Translator as a pipeline stage.
func NewTranslationStage(t Translator, targetLang string) (Stage, error) {
	if t == nil {
		return nil, errors.New("translator is required")
	}
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return nil, errors.New("target language is required")
	}
	return &translationStage{translator: t, targetLang: targetLang}, nil
}

func (s *translationStage) Name() string { return "translate" }

func (s *translationStage) Suffix() string { return "_" + s.targetLang }

func (s *translationStage) Transform(ctx context.Context, text string) (string, error) {
	return s.translator.Translate(ctx, text, s.targetLang, nil, nil)
}
